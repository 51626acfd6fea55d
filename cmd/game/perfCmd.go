package game

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tychodev/tycho/cmd/util"
	"github.com/tychodev/tycho/rpc/common"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for tycho servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	// Benchmark users live above this id so they never collide with real ones.
	perfUserIDBase = uint64(1 << 40)
	perfNumThreads = 10
	perfUserSpread = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	GameCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. xp,bonuses)"))
	key = "threads"
	GameCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "users"
	GameCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different users to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfUserSpread = viper.GetInt("users")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for tycho servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	// create the benchmark users once, all tests share them
	getUserID, iter := getUserIDs()
	iter(func(id uint64) {
		if _, err := rpcClient.CreateUser(id, fmt.Sprintf("perf-%d", id)); err != nil {
			log.Printf("(setup) - error creating user %d: %v\n", id, err)
		}
	})

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	userGetResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("user-get") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := rpcClient.User(getUserID(counter))
				if err != nil {
					log.Printf("(user-get) - error reading user: %v\n", err)
				}
				counter++
			}
		})
	})

	results["user-get"] = userGetResult
	printResult("user-get", userGetResult)

	xpResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("xp") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := rpcClient.GainExperience(getUserID(counter), 1)
				if err != nil {
					log.Printf("(xp) - error granting experience: %v\n", err)
				}
				counter++
			}
		})
	})

	results["xp"] = xpResult
	printResult("xp", xpResult)

	bonusesResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("bonuses") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := rpcClient.Bonuses(getUserID(counter))
				if err != nil {
					log.Printf("(bonuses) - error reading bonuses: %v\n", err)
				}
				counter++
			}
		})
	})

	results["bonuses"] = bonusesResult
	printResult("bonuses", bonusesResult)

	msgSendResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("msg-send") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				from := getUserID(counter)
				to := getUserID(counter + 1)
				_, err := rpcClient.SendMessage(from, to, "perf")
				if err != nil {
					log.Printf("(msg-send) - error sending message: %v\n", err)
				}
				counter++
			}
		})
	})

	results["msg-send"] = msgSendResult
	printResult("msg-send", msgSendResult)

	msgListResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("msg-list") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := rpcClient.Messages(getUserID(counter))
				if err != nil {
					log.Printf("(msg-list) - error listing messages: %v\n", err)
				}
				counter++
			}
		})
	})

	results["msg-list"] = msgListResult
	printResult("msg-list", msgListResult)

	mixedUsageResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				id := getUserID(counter)
				var err error
				switch counter % 4 {
				case 0: // read
					_, err = rpcClient.User(id)
				case 1: // write
					_, err = rpcClient.GainExperience(id, 1)
				case 2: // derived read
					_, err = rpcClient.Bonuses(id)
				case 3: // inbox read
					_, err = rpcClient.Messages(id)
				}

				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates the benchmark user id pool and functions to work with it
func getUserIDs() (func(int) uint64, func(func(uint64))) {
	ids := make([]uint64, perfUserSpread)
	for i := 0; i < perfUserSpread; i++ {
		ids[i] = perfUserIDBase + uint64(i)
	}

	// Function to get a user id by index (with wraparound)
	getUserID := func(i int) uint64 {
		return ids[i%perfUserSpread]
	}

	// Function to iterate over all user ids and apply a function to each
	iterateIDs := func(fn func(uint64)) {
		for _, id := range ids {
			fn(id)
		}
	}

	return getUserID, iterateIDs
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Serializer", "Transport",
		"Threads", "Users Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfUserSpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
