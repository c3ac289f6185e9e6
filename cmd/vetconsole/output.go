package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"vet-console/internal/domain/entity"
	"vet-console/internal/domain/screen"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func printKinds(schemas []entity.Schema) {
	rows := make([][]string, 0, len(schemas))
	for _, s := range schemas {
		searches := make([]string, 0, len(s.Searches))
		for _, v := range s.Searches {
			searches = append(searches, v.Name+"("+strings.Join(v.Params, ",")+")")
		}
		rows = append(rows, []string{string(s.Kind), s.Title(), s.Path, orDash(strings.Join(searches, " "))})
	}
	printTable([]string{"KIND", "NAME", "PATH", "SEARCHES"}, rows)
}

// printScreen imprime las filas con sus campos y las refs ya resueltas.
func printScreen(c *cli.Command, sc *screen.Screen) error {
	if c.Bool("json") {
		return printJSON(sc.View())
	}

	s := sc.Schema()
	headers := []string{"ID"}
	for _, f := range s.Fields {
		headers = append(headers, strings.ToUpper(f.Label))
	}
	for _, r := range s.Refs {
		headers = append(headers, strings.ToUpper(r.Label))
	}
	for _, d := range s.Derived {
		headers = append(headers, strings.ToUpper(d.Label))
	}

	rows := sc.Rows()
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{row.ID}
		for _, f := range s.Fields {
			line = append(line, orDash(row.Record.String(f.Key)))
		}
		for _, r := range s.Refs {
			line = append(line, row.Labels[r.Key])
		}
		for _, d := range s.Derived {
			line = append(line, row.Labels[d.Key])
		}
		out = append(out, line)
	}
	printTable(headers, out)

	if f := sc.Filter(); f != nil {
		fmt.Printf("\nfilter: %s %v\n", f.Variant, f.Params)
	}
	return nil
}

func printNotifications(items []screen.Notification) {
	for _, n := range items {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
