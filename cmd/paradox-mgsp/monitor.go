package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	client "github.com/panelmon/paradox-mgsp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var index []byte

const maxPageEvents = 50

var (
	monitorListen   string
	monitorDuration time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream live events from the panel",
	Long: `Polls the panel for live events and logs each one as it arrives. While
running it also serves a small status page on --listen, with Prometheus
metrics on /metrics. Stops on SIGINT/SIGTERM, or after --duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		id := cli.Identity()
		panelInfoGauge.WithLabelValues(
			id.ProductID.String(),
			id.Firmware.String(),
			strconv.Itoa(int(id.PanelID)),
		).Set(1)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		events := cli.MonitorEvents(ctx, monitorDuration)
		page := &statusPage{id: id, state: cli.State()}

		var g errgroup.Group
		g.Go(func() error {
			defer cancel()
			for event := range events {
				log.Info(
					"event",
					"group", fmt.Sprintf("0x%02x", event.Group),
					"event", event.Event1,
					"partition", event.Partition,
					"label", event.Label,
				)
				eventCounter.WithLabelValues(fmt.Sprintf("0x%02x", event.Group)).Inc()
				lastEventGauge.SetToCurrentTime()
				page.add(event)
			}
			return nil
		})

		if monitorListen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.Handle("/", page)
			server := &http.Server{Addr: monitorListen, Handler: mux}
			g.Go(func() error {
				log.Info("starting server", "addr", monitorListen)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info("stopping server")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*5)
				defer shutdownCancel()
				return server.Shutdown(shutdownCtx)
			})
		}

		return g.Wait()
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorListen, "listen", "l", ":9100", "Status page address, empty to disable")
	monitorCmd.Flags().DurationVarP(&monitorDuration, "duration", "d", 0, "Stop after this long, 0 to run until interrupted")
	rootCmd.AddCommand(monitorCmd)
}

type eventRow struct {
	Time      string
	Partition byte
	Group     string
	Event     byte
	Label     string
}

// statusPage keeps the last events for the web page, newest first.
type statusPage struct {
	mu     sync.Mutex
	id     client.PanelIdentity
	state  client.State
	events []eventRow
}

func (p *statusPage) add(event client.EventRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append([]eventRow{{
		Time:      time.Now().Format(time.TimeOnly),
		Partition: event.Partition,
		Group:     fmt.Sprintf("0x%02x", event.Group),
		Event:     event.Event1,
		Label:     event.Label,
	}}, p.events...)
	if len(p.events) > maxPageEvents {
		p.events = p.events[:maxPageEvents]
	}
}

func (p *statusPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tpl := template.Must(template.New("index").Parse(string(index)))
	_ = tpl.Execute(w, struct {
		Product  string
		Firmware string
		Panel    uint16
		State    string
		Events   []eventRow
	}{
		Product:  p.id.ProductID.String(),
		Firmware: p.id.Firmware.String(),
		Panel:    p.id.PanelID,
		State:    p.state.String(),
		Events:   p.events,
	})
}
