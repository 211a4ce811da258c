package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/auth"
	"github.com/harrisonrobin/taskflow/pkg/backend"
	"github.com/harrisonrobin/taskflow/pkg/backup"
	"github.com/harrisonrobin/taskflow/pkg/cache"
	"github.com/harrisonrobin/taskflow/pkg/config"
	"github.com/harrisonrobin/taskflow/pkg/filter"
	"github.com/harrisonrobin/taskflow/pkg/google"
	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/harrisonrobin/taskflow/pkg/persist"
	"github.com/harrisonrobin/taskflow/pkg/session"
	"github.com/shopspring/decimal"
)

func main() {
	// 1. Parse Flags
	calendarName := flag.String("calendar", "", "Google Calendar name to store tasks on (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar")
	watch := flag.Bool("watch", false, "Stay running and print the list when remote changes arrive")

	addTitle := flag.String("add", "", "Add a task with the given title")
	description := flag.String("desc", "", "Description for -add")
	category := flag.String("category", "", "Category for -add")
	amount := flag.String("amount", "0", "Monetary amount for -add")
	due := flag.String("due", "", "Due date for -add (YYYY-MM-DD)")

	toggleID := flag.String("toggle", "", "Toggle a task between pending and completed")
	deleteID := flag.String("delete", "", "Delete a task by ID")

	filterName := flag.String("filter", "all", "Filter: all, today, week, month, or overdue")
	search := flag.String("search", "", "Case-insensitive search over title, description, and category")
	showStats := flag.Bool("stats", false, "Print summary statistics")

	exportPath := flag.String("export", "", "Export all tasks to a JSON file")
	importPath := flag.String("import", "", "Import tasks from a JSON file, replacing the collection")
	clearAll := flag.Bool("clear", false, "Delete every task and purge the local cache")
	flag.Parse()

	// 2. Handle Set Calendar
	if *setCalendar != "" {
		cfg, err := config.Load()
		if err != nil {
			cfg = &config.Config{}
		}
		cfg.Calendar = *setCalendar
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}

	ctx := context.Background()

	// 3. Handle Authentication
	if *doAuth {
		if err := reauthenticate(ctx); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Println("Authentication successful!")
		return
	}

	// 4. Connect; degrade to the local cache when the remote store is out of reach.
	cacheDir, err := cache.DefaultDir()
	if err != nil {
		log.Fatalf("Error locating cache directory: %v", err)
	}
	local := cache.New(cacheDir)

	var remote backend.RemoteStore
	var identity backend.Identity

	client, err := google.NewClient(ctx, cfg.Calendar, time.Duration(cfg.PollIntervalSeconds)*time.Second)
	if err != nil {
		log.Printf("Remote store unavailable, running from local cache: %v", err)
		identity = backend.Identity(cfg.LastAccount)
	} else {
		remote = client
		identity = client.Identity()
		if cfg.LastAccount != string(identity) {
			cfg.LastAccount = string(identity)
			if err := config.Save(cfg); err != nil {
				log.Printf("Warning: could not remember account: %v", err)
			}
		}
	}
	if identity.IsAnonymous() {
		log.Println("No account known yet; run with -auth while online first.")
	}

	sess := session.New(persist.New(remote, local), remote)
	defer sess.Close()

	sess.SetIdentity(identity)
	sess.Flush() // initial load

	// 5. Dispatch
	switch {
	case *addTitle != "":
		task, err := addTask(sess, *addTitle, *description, *category, *amount, *due)
		if err != nil {
			log.Fatalf("Error adding task: %v", err)
		}
		fmt.Printf("Created %s  %s\n", task.ID, task.Title)

	case *toggleID != "":
		sess.ToggleStatus(*toggleID)

	case *deleteID != "":
		sess.Remove(*deleteID)

	case *exportPath != "":
		if err := exportTasks(sess, *exportPath); err != nil {
			log.Fatalf("Error exporting tasks: %v", err)
		}
		fmt.Printf("Exported %d tasks to %s\n", len(sess.Tasks()), *exportPath)

	case *importPath != "":
		n, err := importTasks(sess, *importPath)
		if err != nil {
			log.Fatalf("Error importing tasks: %v", err)
		}
		fmt.Printf("Imported %d tasks from %s\n", n, *importPath)

	case *clearAll:
		sess.ClearAll()
		fmt.Println("All tasks deleted.")

	case *showStats:
		printStats(sess)

	default:
		if err := printList(sess, *filterName, *search); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if *watch && remote != nil {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		log.Println("Watching for remote changes; press Ctrl-C to stop.")
		runWatch(sess, time.Duration(cfg.PollIntervalSeconds)*time.Second, *filterName, *search, stop)
		log.Println("Stopping watch.")
	}

	sess.Flush() // let pending saves settle before exit
}

// runWatch reprints the filtered list on every tick until a stop signal
// arrives, then returns so the session can tear down cleanly.
func runWatch(sess *session.Session, interval time.Duration, filterName, search string, stop <-chan os.Signal) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := printList(sess, filterName, search); err != nil {
				log.Printf("%v", err)
			}
		}
	}
}

// reauthenticate removes any cached token and runs the OAuth flow again.
func reauthenticate(ctx context.Context) error {
	xdgConfigBase, err := auth.GetXdgHome()
	if err != nil {
		return fmt.Errorf("could not find path to configuration: %w", err)
	}

	tokenFile := filepath.Join(xdgConfigBase, auth.TokenFile)
	if _, err := os.Stat(tokenFile); err == nil {
		log.Printf("Removing existing token file at '%s'", tokenFile)
		if err := os.Remove(tokenFile); err != nil {
			return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
		}
	}

	_, err = auth.GetCalendarService(ctx)
	return err
}

func addTask(sess *session.Session, title, description, category, amount, due string) (model.Task, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Task{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	draft := model.Draft{
		Title:       title,
		Description: description,
		Category:    category,
		Amount:      amt,
	}
	if due != "" {
		d, err := time.Parse("2006-01-02", due)
		if err != nil {
			return model.Task{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD): %w", due, err)
		}
		draft.DueDate = model.DueTime{Time: d}
	}
	return sess.Create(draft)
}

func exportTasks(sess *session.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return backup.Export(f, sess.Tasks())
}

func importTasks(sess *session.Session, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tasks, err := backup.Import(f)
	if err != nil {
		return 0, err
	}
	sess.Import(tasks)
	return len(tasks), nil
}

func printList(sess *session.Session, filterName, search string) error {
	sel, err := filter.ParseSelector(filterName)
	if err != nil {
		return err
	}

	tasks := sess.Filtered(sel, search)
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	for _, t := range tasks {
		marker := " "
		if t.Status == model.StatusCompleted {
			marker = "x"
		}
		line := fmt.Sprintf("[%s] %-36s  %s", marker, t.ID, t.Title)
		if !t.DueDate.IsZero() {
			line += "  due " + t.DueDate.Format("2006-01-02")
		}
		if t.Amount.IsPositive() {
			line += "  $" + t.Amount.StringFixed(2)
		}
		if t.Category != "" {
			line += "  #" + t.Category
		}
		fmt.Println(line)
	}
	return nil
}

func printStats(sess *session.Session) {
	sum := sess.Summary()
	fmt.Printf("Total tasks:      %d\n", sum.Total)
	fmt.Printf("Completed:        %d\n", sum.Completed)
	fmt.Printf("Pending payments: $%s\n", sum.PendingPaymentSum.StringFixed(2))
	fmt.Printf("Progress:         %.0f%%\n", sum.ProgressPct)
	fmt.Printf("Overdue:          %d\n", sum.OverdueCount)
}
