package kv

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for tKV servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfCase describes one benchmark: whether its keys are written before the
// measured run, whether they are deleted afterwards, and the operation
// measured per iteration
type perfCase struct {
	name    string
	seed    bool
	cleanup bool
	op      func(key string, i int) error
}

// perfResult bundles the benchmark result with the latency timer that
// sampled the individual requests
type perfResult struct {
	bench testing.BenchmarkResult
	timer gometrics.Timer
}

func init() {
	flags := KeyValueCommands.PersistentFlags()
	flags.String("skip", "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	flags.Int("threads", 10, util.WrapString("Number of threads to use for the benchmark"))
	flags.Int("large-value-size", 1000, util.WrapString("How large the value for the set-large test should be (in KB)"))
	flags.Int("keys", 100, util.WrapString("How many different keys to use for the tests"))

	perfTestCmd.Flags().String("csv", "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for tKV servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	smallValue := []byte("test")
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	cases := []perfCase{
		{name: "set", cleanup: true, op: func(key string, _ int) error {
			return rpcStore.Set(key, smallValue)
		}},
		{name: "set-large", cleanup: true, op: func(key string, _ int) error {
			return rpcStore.Set(key, largeValue)
		}},
		{name: "get", seed: true, cleanup: true, op: func(key string, _ int) error {
			_, _, err := rpcStore.Get(key)
			return err
		}},
		{name: "delete", seed: true, cleanup: true, op: func(key string, _ int) error {
			return rpcStore.Delete(key)
		}},
		{name: "has", seed: true, cleanup: true, op: func(key string, _ int) error {
			_, err := rpcStore.Has(key)
			return err
		}},
		// keys for this case are never written, a miss is the expected outcome
		{name: "has-not", op: func(key string, _ int) error {
			_, err := rpcStore.Has(key)
			return err
		}},
		{name: "mixed", seed: true, cleanup: true, op: func(key string, i int) error {
			switch i % 4 {
			case 0:
				return rpcStore.Set(key, smallValue)
			case 1:
				_, _, err := rpcStore.Get(key)
				return err
			case 2:
				return rpcStore.Delete(key)
			default:
				_, err := rpcStore.Has(key)
				return err
			}
		}},
	}

	results := make(map[string]perfResult, len(cases))
	order := make([]string, 0, len(cases))

	for _, c := range cases {
		results[c.name] = runPerfCase(c)
		order = append(order, c.name)
		printResult(c.name, results[c.name])
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, order, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runPerfCase measures one case with the configured parallelism. Seeding
// happens before the timer starts, cleanup runs via b.Cleanup after each
// benchmark invocation.
func runPerfCase(c perfCase) perfResult {
	timer := gometrics.NewTimer()

	bench := testing.Benchmark(func(b *testing.B) {
		if shouldSkip(c.name) {
			return
		}

		keys := newKeySet(c.name)

		if c.seed {
			keys.each(func(k string) {
				if err := rpcStore.Set(k, []byte("test")); err != nil {
					log.Printf("(%s) - error seeding key: %v\n", c.name, err)
				}
			})
		}

		if c.cleanup {
			b.Cleanup(func() {
				keys.each(func(k string) {
					if err := rpcStore.Delete(k); err != nil {
						log.Printf("(%s) - error deleting key: %v\n", c.name, err)
					}
				})
			})
		}

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				start := time.Now()
				err := c.op(keys.at(i), i)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(%s) - operation error: %v\n", c.name, err)
				}
				i++
			}
		})
	})

	return perfResult{bench, timer}
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// keySet is the fixed set of keys one benchmark case works on
type keySet struct {
	keys []string
}

func newKeySet(name string) keySet {
	spread := perfKeySpread
	if spread < 1 {
		spread = 1
	}

	keys := make([]string, spread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, name, i)
	}
	return keySet{keys: keys}
}

// at returns a key by index with wraparound
func (s keySet) at(i int) string {
	return s.keys[i%len(s.keys)]
}

// each applies fn to every key in the set
func (s keySet) each(fn func(string)) {
	for _, key := range s.keys {
		fn(key)
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Latency percentiles as sampled by the timer
	ps := result.timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
}

// writeResultsToCSV writes benchmark results to a CSV file, one row per
// case in run order
func writeResultsToCSV(csvPath string, order []string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P95Ns", "P99Ns", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"StoreID", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range order {
		result := results[test]

		var nsPerOp, opsPerSec float64
		skipped := "true"

		if result.bench.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		ps := result.timer.Percentiles([]float64{0.5, 0.95, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			skipped,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetStoreID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
