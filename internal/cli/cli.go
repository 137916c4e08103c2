// Package cli разбирает аргументы командной строки консоли и выполняет
// подкоманды поверх сессии и шлюза.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/magabrotheeeer/venue-console/internal/gateway"
	"github.com/magabrotheeeer/venue-console/internal/lib/phone"
	"github.com/magabrotheeeer/venue-console/internal/models"
	"github.com/magabrotheeeer/venue-console/internal/notify"
	"github.com/magabrotheeeer/venue-console/internal/session"
)

// ErrFailed операция завершилась неудачей; подробности уже переданы в уведомлении.
var ErrFailed = errors.New("operation failed")

// ErrUsage неверные аргументы.
var ErrUsage = errors.New("usage error")

// Runner выполняет подкоманды.
type Runner struct {
	Session     *session.Store
	Gateway     *gateway.Gateway
	CountryCode string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Now         func() time.Time
	// Tail подписка на уведомления; nil, если брокер не настроен.
	Tail func(ctx context.Context, fn func(notify.Notification)) error
}

type command struct {
	usage string
	run   func(r *Runner, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":     {"login -u <username> [-p <password>]", (*Runner).login},
	"logout":    {"logout", (*Runner).logout},
	"whoami":    {"whoami", (*Runner).whoami},
	"passwd":    {"passwd -current <password> -new <password>", (*Runner).passwd},
	"counters":  {"counters", (*Runner).counters},
	"tickets":   {"tickets", (*Runner).tickets},
	"guides":    {"guides", (*Runner).guides},
	"analytics": {"analytics <today|last7days|last30days|annual>", (*Runner).analytics},
	"calendar":  {"calendar <start> <end>", (*Runner).calendar},
	"send":      {"send <phone> <message>", (*Runner).send},
	"bulk":      {"bulk <message> (phones on stdin, one per line)", (*Runner).bulk},
	"messages":  {"messages [-start date] [-end date] [-status sent|failed|all]", (*Runner).messages},
	"tail":      {"tail (follow notifications until interrupted)", (*Runner).tail},
}

// Run выполняет подкоманду args[0].
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.usage()
		return ErrUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(r.Stderr, "unknown command %q\n", args[0])
		r.usage()
		return ErrUsage
	}
	return cmd.run(r, ctx, args[1:])
}

func (r *Runner) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.Stderr, "usage: console <command> [args]")
	for _, name := range names {
		fmt.Fprintf(r.Stderr, "  %s\n", commands[name].usage)
	}
}

func (r *Runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Stderr)
	return fs
}

func result(ok bool) error {
	if !ok {
		return ErrFailed
	}
	return nil
}

func (r *Runner) login(ctx context.Context, args []string) error {
	var username, password string
	fs := r.flagSet("login")
	fs.StringVar(&username, "u", "", "username")
	fs.StringVar(&password, "p", "", "password (falls back to CONSOLE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if password == "" {
		password = os.Getenv("CONSOLE_PASSWORD")
	}
	if username == "" || password == "" {
		fmt.Fprintln(r.Stderr, "username and password are required")
		return ErrUsage
	}
	return result(r.Session.Login(ctx, username, password))
}

func (r *Runner) logout(ctx context.Context, _ []string) error {
	r.Session.Logout(ctx)
	return nil
}

func (r *Runner) whoami(_ context.Context, _ []string) error {
	user, ok := r.Session.User()
	if !ok {
		fmt.Fprintln(r.Stdout, "not logged in")
		return nil
	}
	since := user.CreatedAt
	if t, err := time.Parse(time.RFC3339, user.CreatedAt); err == nil {
		since = humanize.RelTime(t, r.Now(), "ago", "from now")
	}
	fmt.Fprintf(r.Stdout, "%s (%s), member since %s\n", user.Username, user.Role, since)
	return nil
}

func (r *Runner) passwd(ctx context.Context, args []string) error {
	var current, next string
	fs := r.flagSet("passwd")
	fs.StringVar(&current, "current", "", "current password")
	fs.StringVar(&next, "new", "", "new password")
	if err := fs.Parse(args); err != nil || current == "" || next == "" {
		return ErrUsage
	}
	return result(r.Session.ChangePassword(ctx, current, next))
}

func (r *Runner) table(header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (r *Runner) counters(ctx context.Context, _ []string) error {
	if !r.Gateway.FetchCounters(ctx) {
		return ErrFailed
	}
	r.table("ID\tUSERNAME\tROLE\tCREATED", func(w io.Writer) {
		for _, c := range r.Gateway.Counters() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Username, c.Role, c.CreatedAt)
		}
	})
	return nil
}

func (r *Runner) tickets(ctx context.Context, _ []string) error {
	if !r.Gateway.FetchTickets(ctx) {
		return ErrFailed
	}
	r.table("ID\tSHOW\tTYPE\tCATEGORY\tPRICE", func(w io.Writer) {
		for _, t := range r.Gateway.Tickets() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.ShowName, t.TicketType, t.Category, humanize.CommafWithDigits(t.Price, 2))
		}
	})
	return nil
}

func (r *Runner) guides(ctx context.Context, _ []string) error {
	if !r.Gateway.FetchGuides(ctx) {
		return ErrFailed
	}
	r.table("ID\tNAME\tNUMBER\tVEHICLE\tSCORE", func(w io.Writer) {
		for _, g := range r.Gateway.Guides() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", g.ID, g.Name, g.Number, g.VehicleType, g.Score)
		}
	})
	return nil
}

func (r *Runner) analytics(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	a := r.Gateway.FetchPeriodAnalytics(ctx, models.Period(args[0]))
	if a == nil {
		fmt.Fprintln(r.Stdout, "no data available")
		return ErrFailed
	}

	fmt.Fprintf(r.Stdout, "Total tickets: %s\n", humanize.Comma(int64(a.TotalTickets)))
	fmt.Fprintf(r.Stdout, "Total amount:  %s\n", a.TotalAmount)
	if a.GrowthPercent != nil {
		fmt.Fprintf(r.Stdout, "Growth:        %+.1f%%\n", *a.GrowthPercent)
	}
	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(r.Stdout, "%s: %s\n", k, a.Extra[k])
	}
	if len(a.Attractions) > 0 {
		r.table("ATTRACTION\tTICKETS\tAMOUNT", func(w io.Writer) {
			for _, at := range a.Attractions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", at.Name, humanize.Comma(int64(at.Tickets)), at.Amount)
			}
		})
	}
	return nil
}

func (r *Runner) calendar(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	data := r.Gateway.FetchCalendarData(ctx, args[0], args[1])
	if data == nil {
		return ErrFailed
	}
	r.table("S.NO\tINVOICE\tDATE\tSHOW\tCOUNTER\tADULT\tCHILD\tPAID", func(w io.Writer) {
		for _, tx := range data.Transactions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				tx.SNo, tx.InvoiceNo, tx.Date, tx.ShowName, tx.Counter, tx.Adult, tx.Child, tx.TotalPaid)
		}
	})
	fmt.Fprintf(r.Stdout, "Total sales: %s, total amount: %s\n", humanize.Comma(int64(data.TotalSales)), data.TotalAmount)
	return nil
}

func (r *Runner) send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	number := phone.Normalize(args[0], r.CountryCode)
	if !phone.Valid(number) {
		fmt.Fprintf(r.Stderr, "invalid phone number %q\n", args[0])
		return ErrUsage
	}
	return result(r.Gateway.SendMessage(ctx, number, strings.Join(args[1:], " ")))
}

func (r *Runner) bulk(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	raw, err := io.ReadAll(r.Stdin)
	if err != nil {
		return fmt.Errorf("cli.bulk: read phones: %w", err)
	}
	phones, rejected := phone.NormalizeList(phone.SplitLines(string(raw)), r.CountryCode)
	for _, line := range rejected {
		fmt.Fprintf(r.Stderr, "skipping invalid phone number %q\n", line)
	}
	if len(phones) == 0 {
		fmt.Fprintln(r.Stderr, "no valid phone numbers")
		return ErrUsage
	}
	return result(r.Gateway.SendBulkMessages(ctx, phones, strings.Join(args, " ")))
}

func (r *Runner) messages(ctx context.Context, args []string) error {
	var start, end, status string
	fs := r.flagSet("messages")
	fs.StringVar(&start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&end, "end", "", "end date, YYYY-MM-DD")
	fs.StringVar(&status, "status", "all", "sent, failed or all")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if !r.Gateway.FetchSentMessages(ctx, start, end, models.MessageStatus(status)) {
		return ErrFailed
	}

	r.table("ID\tPHONE\tSTATUS\tSENT\tMESSAGE", func(w io.Writer) {
		for _, m := range r.Gateway.Messages() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Phone, m.Status, m.CreatedAt, m.Message)
		}
	})
	stats := r.Gateway.MessageStats()
	fmt.Fprintf(r.Stdout, "Sent: %s, failed: %s, today: %s, cost: ₹%s\n",
		humanize.Comma(int64(stats.TotalSent)),
		humanize.Comma(int64(stats.TotalFailed)),
		humanize.Comma(int64(stats.TodayMessages)),
		humanize.CommafWithDigits(stats.TotalAmount, 2),
	)
	return nil
}

func (r *Runner) tail(ctx context.Context, _ []string) error {
	if r.Tail == nil {
		fmt.Fprintln(r.Stderr, "notifications broker is not configured, set AMQP_URL")
		return ErrFailed
	}
	err := r.Tail(ctx, func(n notify.Notification) {
		fmt.Fprintf(r.Stdout, "%s [%s] %s: %s\n", n.At.Format(time.TimeOnly), n.Kind, n.Title, n.Message)
	})
	if err != nil {
		return fmt.Errorf("cli.tail: %w", err)
	}
	return nil
}
