package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/export"
	"github.com/joseph-ayodele/studio-inventory/internal/ingest"
	"github.com/joseph-ayodele/studio-inventory/internal/labels"
	"github.com/joseph-ayodele/studio-inventory/internal/ledger"
	"github.com/joseph-ayodele/studio-inventory/internal/repository"
	"github.com/joseph-ayodele/studio-inventory/internal/workspace"
)

const usage = `studio-inventory <command> [flags]

Commands:
  init        create the workspace folders and database
  ingest      parse receipt PDFs into the ledger
  inventory   print the on-hand report
  receive     manually add stock to a part
  remove      record stock leaving the studio
  void        reverse an ingested order (keeps history)
  unvoid      undo a void
  purge       erase an order and rebuild receipts
  rebuild     recompute receipts from line items
  export      write CSV and XLSX exports
  label-preset  list or save label layout presets for a sheet template
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if len(os.Args) < 2 {
		printError(usage)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, cfg, logger, cmd, args); err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger, cmd string, args []string) error {
	ws := workspace.New(cfg.Workspace.Root)

	switch cmd {
	case "init":
		if err := ws.Ensure(); err != nil {
			return err
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Printf("workspace ready at %s\n", cfg.Workspace.Root)
		return nil

	case "ingest":
		fs := flag.NewFlagSet("ingest", flag.ExitOnError)
		dir := fs.String("dir", "", "directory of receipt PDFs (defaults to workspace receipts/)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := ws.Ensure(); err != nil {
			return err
		}
		if *dir == "" {
			*dir = ws.ReceiptsDir()
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		led := ledger.NewService(db, logger)
		svc := ingest.NewService(db, cfg, led, logger, nil)
		res, err := svc.IngestDir(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("orders: %d  line items: %d  duplicates: %d  unmatched: %d  errors: %d\n",
			res.OrdersAdded, res.LineItemsAdded, res.DuplicatesSkipped, res.UnmatchedSkipped, len(res.Errors))
		for _, fe := range res.Errors {
			printError("  %s: %s\n", fe.Path, fe.Reason)
		}
		return nil

	case "inventory":
		fs := flag.NewFlagSet("inventory", flag.ExitOnError)
		vendor := fs.String("vendor", "", "filter by vendor")
		match := fs.String("match", "", "filter part keys containing this text")
		inStock := fs.Bool("in-stock", false, "only parts with on-hand > 0")
		sortBy := fs.String("sort", "part_key", "sort column: part_key, vendor, on_hand, total_spend")
		desc := fs.Bool("desc", false, "sort descending")
		limit := fs.Int("limit", 0, "max rows (0 = all)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		led := ledger.NewService(db, logger)
		rows, err := led.List(ctx, repository.InventoryFilter{
			Vendor:      *vendor,
			PartKeyLike: *match,
			OnlyInStock: *inStock,
			SortBy:      *sortBy,
			Desc:        *desc,
			Limit:       *limit,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%-40s %10s %10s %10s  %s\n", "PART KEY", "RECEIVED", "REMOVED", "ON HAND", "LABEL")
		for _, r := range rows {
			fmt.Printf("%-40s %10s %10s %10s  %s\n",
				r.PartKey, r.UnitsReceived.String(), r.UnitsRemoved.String(), r.OnHand.String(), r.LabelShort)
		}
		return nil

	case "receive":
		fs := flag.NewFlagSet("receive", flag.ExitOnError)
		partKey := fs.String("part", "", "part key (required)")
		vendor := fs.String("vendor", "", "vendor for a new part")
		sku := fs.String("sku", "", "sku for a new part")
		descr := fs.String("desc", "", "description for a new part")
		qtyStr := fs.String("qty", "", "quantity to add (required)")
		costStr := fs.String("unit-cost", "", "unit cost (optional)")
		invoice := fs.String("invoice", "", "invoice reference (optional)")
		note := fs.String("note", "", "note")
		if err := fs.Parse(args); err != nil {
			return err
		}
		qty, err := requireDecimal(*qtyStr, "--qty")
		if err != nil {
			return err
		}
		var unitCost *decimal.Decimal
		if *costStr != "" {
			c, err := requireDecimal(*costStr, "--unit-cost")
			if err != nil {
				return err
			}
			unitCost = &c
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		led := ledger.NewService(db, logger)
		return led.Receive(ctx, ledger.ReceiveRequest{
			PartKey:     *partKey,
			Vendor:      *vendor,
			SKU:         *sku,
			Description: *descr,
			Qty:         qty,
			UnitCost:    unitCost,
			Invoice:     *invoice,
			Note:        *note,
		})

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		partKey := fs.String("part", "", "part key (required)")
		qtyStr := fs.String("qty", "", "quantity to remove (required)")
		project := fs.String("project", "", "project the stock went to")
		note := fs.String("note", "", "note")
		if err := fs.Parse(args); err != nil {
			return err
		}
		qty, err := requireDecimal(*qtyStr, "--qty")
		if err != nil {
			return err
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		led := ledger.NewService(db, logger)
		removalUID, err := led.Remove(ctx, ledger.RemoveRequest{
			PartKey: *partKey,
			Qty:     qty,
			Project: *project,
			Note:    *note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("removal %s recorded\n", removalUID)
		return nil

	case "void", "unvoid", "purge":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		ref := fs.String("order", "", "order UID or invoice reference (required)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *ref == "" {
			return common.InvalidInputf("--order is required")
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		led := ledger.NewService(db, logger)
		order, err := led.FindOrder(ctx, *ref)
		if err != nil {
			return fmt.Errorf("order %q: %w", *ref, err)
		}
		switch cmd {
		case "void":
			n, err := led.VoidOrder(ctx, order.OrderUID)
			if err != nil {
				return err
			}
			fmt.Printf("voided with %d compensating removal(s)\n", n)
			return nil
		case "unvoid":
			n, err := led.UndoVoid(ctx, order.OrderUID)
			if err != nil {
				return err
			}
			fmt.Printf("unvoided, %d removal(s) deleted\n", n)
			return nil
		default:
			return led.PurgeOrder(ctx, order.OrderUID)
		}

	case "rebuild":
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return ledger.NewService(db, logger).Rebuild(ctx)

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		dir := fs.String("dir", "", "output directory (defaults to workspace exports/)")
		xlsx := fs.Bool("xlsx", true, "also write the XLSX workbook")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := ws.Ensure(); err != nil {
			return err
		}
		if *dir == "" {
			*dir = ws.ExportsDir()
		}
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		svc := export.NewService(db, logger)
		paths, err := svc.ExportCSV(ctx, *dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		if *xlsx {
			path, err := svc.ExportXLSX(ctx, *dir)
			if err != nil {
				return err
			}
			fmt.Println(path)
		}
		return nil

	case "label-preset":
		fs := flag.NewFlagSet("label-preset", flag.ExitOnError)
		template := fs.String("template", "", "sheet template JSON file (required)")
		save := fs.String("save", "", "save a layout preset under this name")
		from := fs.String("from", "", "preset JSON to validate and save (default layout if omitted)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *template == "" {
			return common.InvalidInputf("--template is required")
		}
		tmpl, err := labels.LoadTemplate(*template)
		if err != nil {
			return err
		}
		if err := ws.Ensure(); err != nil {
			return err
		}
		if *save != "" {
			preset := labels.DefaultPreset()
			if *from != "" {
				p, err := labels.LoadPreset(*from)
				if err != nil {
					return err
				}
				preset = *p
			}
			path, err := labels.SavePreset(ws.Root, *template, *save, preset)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		}
		fmt.Printf("%s: %dx%d labels per sheet\n", tmpl.Name, tmpl.Grid.Cols, tmpl.Grid.Rows)
		presets, err := labels.ListPresets(ws.Root, *template)
		if err != nil {
			return err
		}
		for _, p := range presets {
			fmt.Println(p)
		}
		return nil

	default:
		printError("unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
		return nil
	}
}

func openDB(cfg *common.Config, logger *slog.Logger) (*sql.DB, error) {
	return repository.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
}

func requireDecimal(s, flagName string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, common.InvalidInputf("%s is required", flagName)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.InvalidInputf("%s: %v", flagName, err)
	}
	return d, nil
}
