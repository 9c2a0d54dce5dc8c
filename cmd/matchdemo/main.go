// Command matchdemo drives the matching engine with a synthetic order
// feed and reports order throughput and latency, for local smoke-testing
// of the facade outside of any RPC transport.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	tomb "gopkg.in/tomb.v2"

	"github.com/grd/stat"

	"matchcore/internal/facade"
	"matchcore/internal/matching"
	"matchcore/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("matchdemo exited with error")
	}
}

func newRootCmd() *cobra.Command {
	var (
		orderCount int
		seed       int64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "matchdemo",
		Short: "Replay a synthetic order feed through the matching engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return run(cmd, orderCount, seed)
		},
	}

	cmd.Flags().IntVar(&orderCount, "orders", 100000, "number of synthetic orders to replay")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the synthetic order feed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, orderCount int, seed int64) error {
	t, ctx := tomb.WithContext(cmd.Context())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	t.Go(func() error {
		select {
		case <-sigCh:
			log.Info().Msg("signal received, shutting down")
			return nil
		case <-t.Dying():
			return nil
		}
	})

	reg := prometheus.NewRegistry()
	mc := metrics.New()
	mc.MustRegister(reg)

	var fillLatencies []time.Duration
	f := facade.New(func(fill matching.Fill) {
		log.Debug().
			Uint64("taker", fill.TakerOwner).
			Uint64("maker", fill.MakerOwner).
			Str("price", fill.Price.String()).
			Uint64("qty", fill.Qty).
			Msg("fill")
	}, mc)
	defer f.Close()

	feed := generateOrders(seed, orderCount)

	start := time.Now()
	for i, o := range feed {
		select {
		case <-ctx.Done():
			log.Info().Int("processed", i).Msg("interrupted before completing the feed")
			return nil
		default:
		}

		opStart := time.Now()
		if o.buy {
			f.InsertBuy(facade.GTC, o.price, o.owner, o.qty)
		} else {
			f.InsertSell(facade.GTC, o.price, o.owner, o.qty)
		}
		fillLatencies = append(fillLatencies, time.Since(opStart))
	}
	elapsed := time.Since(start)

	reportLatencies(fillLatencies, elapsed, len(feed))
	if dropped := f.DroppedFills(); dropped > 0 {
		log.Warn().Uint64("dropped", dropped).Msg("fill dispatch saturated during replay")
	}

	t.Kill(nil)
	return t.Wait()
}

type syntheticOrder struct {
	buy   bool
	price float32
	owner uint64
	qty   uint64
}

// generateOrders builds a reproducible random order feed, in the style
// of a quantcup-style load generator: a small pool of owners trading
// around a central price with bounded size.
func generateOrders(seed int64, n int) []syntheticOrder {
	r := rand.New(rand.NewSource(seed))
	const centerPrice = 100.0
	orders := make([]syntheticOrder, n)
	for i := range orders {
		orders[i] = syntheticOrder{
			buy:   r.Intn(2) == 0,
			price: float32(centerPrice + r.Intn(21) - 10),
			owner: uint64(r.Intn(64)),
			qty:   uint64(r.Intn(1000) + 1),
		}
	}
	return orders
}

type durationSlice []time.Duration

func (d durationSlice) Get(i int) float64 { return float64(d[i]) }
func (d durationSlice) Len() int          { return len(d) }

func reportLatencies(latencies []time.Duration, elapsed time.Duration, n int) {
	if len(latencies) == 0 {
		return
	}
	durations := durationSlice(latencies)
	mean := stat.Mean(durations)
	sd := stat.SdMean(durations, mean)

	const nanoToSeconds = 1e-9
	fmt.Printf("[matchdemo] orders=%d elapsed=%s throughput=%.1f ops/s\n",
		n, elapsed, float64(n)/elapsed.Seconds())
	fmt.Printf("[matchdemo] per-op latency: mean=%.2fus sd=%.2fus\n",
		mean*nanoToSeconds*1e6, sd*nanoToSeconds*1e6)
}
