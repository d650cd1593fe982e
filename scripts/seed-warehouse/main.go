// seed-warehouse populates a demo sales warehouse so the advisor has
// something to discover: a sales_2024 table with two years of orders and a
// transactions table with a few fraud-shaped outliers.
//
// Usage: go run ./scripts/seed-warehouse [flags]
//
// Database connection: Uses standard PG* environment variables
// (PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE; database defaults
// to "sales").
//
// Flags:
//
//	-rows   Orders to insert per year (default: 500)
//	-drop   Drop and recreate the tables instead of appending (default: false)
//	-seed   Random seed, for reproducible datasets (default: 1)
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

var regions = []string{"north", "south", "east", "west", "central"}

func main() {
	rows := flag.Int("rows", 500, "Orders to insert per year")
	drop := flag.Bool("drop", false, "Drop and recreate the tables instead of appending")
	seed := flag.Int64("seed", 1, "Random seed, for reproducible datasets")
	flag.Parse()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to warehouse: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if *drop {
		for _, table := range []string{"sales_2024", "transactions"} {
			if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to drop %s: %v\n", table, err)
				os.Exit(1)
			}
		}
		fmt.Println("Dropped existing tables")
	}

	if err := createTables(ctx, conn); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create tables: %v\n", err)
		os.Exit(1)
	}

	inserted, err := seedSales(ctx, conn, rng, *rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed sales_2024: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Inserted %d rows into sales_2024\n", inserted)

	inserted, err = seedTransactions(ctx, conn, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed transactions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Inserted %d rows into transactions\n", inserted)
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sales_2024 (
			id SERIAL PRIMARY KEY,
			sale_date TIMESTAMP NOT NULL,
			total_amount NUMERIC(12,2),
			region TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			amount NUMERIC(12,2) NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedSales inserts rowsPerYear orders for each of 2023 and 2024, with 2024
// running roughly 20% hotter so year-over-year comparisons have a visible
// trend. A handful of rows get NULL or zero amounts to exercise the data
// quality warning.
func seedSales(ctx context.Context, conn *pgx.Conn, rng *rand.Rand, rowsPerYear int) (int, error) {
	batch := &pgx.Batch{}
	count := 0

	for _, year := range []int{2023, 2024} {
		scale := 1.0
		if year == 2024 {
			scale = 1.2
		}
		for i := 0; i < rowsPerYear; i++ {
			saleDate := randomTimeInYear(rng, year)
			region := regions[rng.Intn(len(regions))]

			var amount any = round2(scale * (20 + rng.Float64()*480))
			switch rng.Intn(100) {
			case 0:
				amount = nil
			case 1:
				amount = 0.0
			}

			batch.Queue(
				"INSERT INTO sales_2024 (sale_date, total_amount, region) VALUES ($1, $2, $3)",
				saleDate, amount, region)
			count++
		}
	}

	return count, sendBatch(ctx, conn, batch)
}

// seedTransactions inserts a base of ordinary activity plus the outliers the
// fraud rules look for: amounts past the default threshold, transfers
// between midnight and five, and one user hammering the table in a day.
func seedTransactions(ctx context.Context, conn *pgx.Conn, rng *rand.Rand) (int, error) {
	batch := &pgx.Batch{}
	count := 0
	now := time.Now()

	queue := func(userID int, ts time.Time, amount float64) {
		batch.Queue(
			"INSERT INTO transactions (user_id, timestamp, amount) VALUES ($1, $2, $3)",
			userID, ts, amount)
		count++
	}

	for i := 0; i < 200; i++ {
		ts := now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour)
		// Keep the base activity in business hours.
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), 9+rng.Intn(9), rng.Intn(60), 0, 0, ts.Location())
		queue(1+rng.Intn(50), ts, round2(10+rng.Float64()*900))
	}

	// Large transactions, past the default 100000 threshold.
	for i := 0; i < 3; i++ {
		queue(60+i, now.Add(-time.Duration(i+1)*24*time.Hour), round2(150000+rng.Float64()*100000))
	}

	// Odd-hours activity.
	for i := 0; i < 4; i++ {
		ts := now.Add(-time.Duration(i+2) * 24 * time.Hour)
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), rng.Intn(5), rng.Intn(60), 0, 0, ts.Location())
		queue(70+i, ts, round2(100+rng.Float64()*400))
	}

	// One user with a same-day burst, past the default daily limit of 5.
	for i := 0; i < 8; i++ {
		queue(99, now.Add(-time.Duration(i)*time.Hour), round2(50+rng.Float64()*200))
	}

	return count, sendBatch(ctx, conn, batch)
}

func sendBatch(ctx context.Context, conn *pgx.Conn, batch *pgx.Batch) error {
	results := conn.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}
	return nil
}

func randomTimeInYear(rng *rand.Rand, year int) time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := time.Duration(rng.Int63n(int64(end.Sub(start))))
	return start.Add(offset)
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

func buildConnString() string {
	host := getEnvOrDefault("PGHOST", "localhost")
	port := getEnvOrDefault("PGPORT", "5432")
	user := getEnvOrDefault("PGUSER", "postgres")
	password := os.Getenv("PGPASSWORD")
	dbname := getEnvOrDefault("PGDATABASE", "sales")

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		host, port, user, dbname)
	if password != "" {
		connStr += fmt.Sprintf(" password=%s", password)
	}
	return connStr
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
