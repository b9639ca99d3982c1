package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/livesearch"
	"github.com/hyperjump/taberu/internal/merge"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/storage"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search interactively, one query per line",
	Long: `Read queries from standard input, one per line, and print the food list
after each. Local matches are printed at once; product search results are
printed when the typing settles. A newer line supersedes any search still
running for an older one.

Lines starting with ":" are commands:
  :tab recent|favorites|added   switch the tab
  :quit                         stop`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		cfg := c.Config

		local, err := storage.LoadLocal(ctx, c.Store, cfg.Search.HistoryLimit)
		if err != nil {
			return err
		}
		vm := merge.NewViewModel(cfg.Search.HistoryLimit)
		vm.SetLocal(local.History, local.Favorites, local.Added)

		b := &browser{out: cmd.OutOrStdout(), format: format, vm: vm, applied: make(chan string, 16)}
		session := livesearch.NewSession(c.Provider(), func(query string, results []*models.Food) {
			if !vm.SetRemote(query, results) {
				return
			}
			remember(ctx, c, results...)
			b.print()
			select {
			case b.applied <- query:
			default:
			}
		}, livesearch.WithWindow(cfg.Search.Debounce()), livesearch.WithLogger(c.Logger))
		defer session.Close()

		b.print()
		if err := b.loop(cmd.InOrStdin(), session); err != nil {
			return err
		}
		if models.QueryActive(vm.Query()) {
			b.await(vm.Query(), cfg.Search.Debounce()+cfg.OpenFoodFacts.Timeout())
		}
		return nil
	})
}

type browser struct {
	mu      sync.Mutex
	out     io.Writer
	format  cli.OutputFormat
	vm      *merge.ViewModel
	applied chan string
}

func (b *browser) loop(in io.Reader, session *livesearch.Session) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ":") {
			fields := strings.Fields(strings.TrimPrefix(line, ":"))
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "q", "quit":
				return nil
			case "tab":
				name := ""
				if len(fields) > 1 {
					name = fields[1]
				}
				tab, err := models.ParseTab(name)
				if err != nil {
					b.println(err.Error())
					continue
				}
				b.vm.SetTab(tab)
				b.print()
			default:
				b.println(fmt.Sprintf("unknown command %q", fields[0]))
			}
			continue
		}
		b.vm.SetQuery(line)
		session.Input(line)
		b.print()
	}
	return scanner.Err()
}

// await blocks until results for query are applied or timeout passes.
func (b *browser) await(query string, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case q := <-b.applied:
			if q == strings.TrimSpace(query) {
				return
			}
		case <-timer.C:
			return
		}
	}
}

func (b *browser) print() {
	items := b.vm.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.format == cli.OutputText {
		fmt.Fprintf(b.out, "-- %q\n", b.vm.Query())
	}
	_ = cli.WriteFoods(b.out, items, b.format)
}

func (b *browser) println(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out, s)
}
