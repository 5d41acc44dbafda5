// report-export runs one report against the ERP database and writes it as JSON or xlsx.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_NAME=... go run ./cmd/report-export \
//	  -report "Daily Inward & Outward Summary" -from 2025-01-01 -to 2025-01-31 -format xlsx -out inward.xlsx
//
// -list prints the available reports. -upload stores the xlsx in GCS_BUCKET and announces it on PUBSUB_TOPIC.
// -issue-token mints a bearer token for the report API (needs API_SECRET).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models/reports"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		list         = flag.Bool("list", false, "list reports and exit")
		report       = flag.String("report", "", "report title or key")
		from         = flag.String("from", "", "from_date (YYYY-MM-DD)")
		to           = flag.String("to", "", "to_date (YYYY-MM-DD)")
		customer     = flag.String("customer", "", "customer")
		process      = flag.String("process", "", "process (Wash, Garment Dyeing, Denim)")
		style        = flag.String("style", "", "style")
		salesOrder   = flag.String("sales-order", "", "sales order")
		deliveryNote = flag.String("delivery-note", "", "delivery note")
		company      = flag.String("company", "", "company")
		format       = flag.String("format", "json", "json or xlsx")
		out          = flag.String("out", "", "output file (default stdout)")
		upload       = flag.Bool("upload", false, "upload the xlsx to GCS and publish the export message")
		issueToken   = flag.String("issue-token", "", "print an API token for this user name and exit")
		tokenRole    = flag.String("token-role", "report-viewer", "role claim of -issue-token")
		tokenTTL     = flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of -issue-token")
	)
	flag.Parse()

	decimal.MarshalJSONWithoutQuotes = true

	if *issueToken != "" {
		token, err := utils.JwtGenerate(0, *issueToken, *tokenRole, *tokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}
	if *list {
		for _, def := range reports.List() {
			fmt.Printf("%-48s %s\n", def.Key, def.Title)
		}
		return
	}
	if *report == "" {
		fmt.Fprintln(os.Stderr, "-report is required (see -list)")
		os.Exit(2)
	}
	if *format != "json" && *format != "xlsx" {
		fmt.Fprintf(os.Stderr, "unsupported -format %q\n", *format)
		os.Exit(2)
	}

	def, err := reports.Lookup(*report)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	filters, err := reports.ParseFilters(map[string]string{
		reports.FilterFromDate:     *from,
		reports.FilterToDate:       *to,
		reports.FilterCustomer:     *customer,
		reports.FilterProcess:      *process,
		reports.FilterStyle:        *style,
		reports.FilterSalesOrder:   *salesOrder,
		reports.FilterDeliveryNote: *deliveryNote,
		reports.FilterCompany:      *company,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := utils.SetCorrelationIdInContext(context.Background(), uuid.NewString())
	ctx = utils.SetUserNameInContext(ctx, "report-export")

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}
	if config.ReportCacheEnabled() {
		config.ConnectRedisWithRetry(ctx)
	}

	if *upload {
		receipt, err := reports.ExportToStorage(ctx, def.Key, filters)
		if err != nil && receipt == nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "stored but not published: %v\n", err)
		}
		_ = json.NewEncoder(os.Stdout).Encode(receipt)
		return
	}

	result, err := reports.Execute(ctx, def.Key, filters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if *format == "xlsx" {
		data, err := reports.ExportExcel(result, def.Title)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xlsx export failed: %v\n", err)
			os.Exit(1)
		}
		if _, err := w.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
}
