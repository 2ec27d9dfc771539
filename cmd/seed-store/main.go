// Command seed-store loads the product catalog from a JSON file and a set of
// default coupons into the state store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
	"github.com/xenking/cartd/internal/storage"
	"github.com/xenking/cartd/internal/storage/kv"
)

type discountJSON struct {
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

type productJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Discounts []discountJSON  `json:"discounts"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := kv.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := kv.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	state := storage.New(kv.NewPostgres(pool), nil)

	if err := seedProducts(ctx, state, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCoupons(ctx, state); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedProducts(ctx context.Context, state *storage.Store, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	products := make([]product.Product, len(raw))
	for i, p := range raw {
		products[i] = product.Product{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Stock: p.Stock,
		}
		for _, d := range p.Discounts {
			products[i].Discounts = append(products[i].Discounts, product.Discount{
				Quantity: d.Quantity,
				Rate:     d.Rate,
			})
		}
	}

	slog.Info("saving products", slog.Int("count", len(products)))

	if err := state.SaveProducts(ctx, products); err != nil {
		return errors.Wrap(err, "save products")
	}
	return nil
}

func seedCoupons(ctx context.Context, state *storage.Store) error {
	slog.Info("seeding default coupons")

	coupons := []coupon.Coupon{
		{
			Code:          "WELCOME10",
			Name:          "Welcome: 10% off",
			DiscountType:  coupon.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
		},
		{
			Code:          "SAVE5000",
			Name:          "5000 off your order",
			DiscountType:  coupon.DiscountAmount,
			DiscountValue: decimal.NewFromInt(5000),
		},
	}

	if err := state.SaveCoupons(ctx, coupons); err != nil {
		return errors.Wrap(err, "save coupons")
	}

	for _, c := range coupons {
		slog.Info("saved coupon", slog.String("code", c.Code), slog.String("name", c.Name))
	}
	return nil
}
