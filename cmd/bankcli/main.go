package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/account"
	"bankclient/internal/domain/card"
	"bankclient/internal/domain/session"
	"bankclient/internal/domain/transaction"
	"bankclient/internal/interfaces/view"
	"bankclient/internal/shared/config"
	"bankclient/internal/shared/logging"
	"bankclient/internal/shared/money"
	"bankclient/internal/shared/telemetry"
)

const usage = `Bank CLI - Terminal front end for the Ledger API

Usage:
  bankcli <command> [options]

Commands:
  register         Create a ledger user (does not sign in)
  login            Sign in and store the session
  logout           Forget the stored session
  dashboard        Show balances and the latest transactions
  accounts         List accounts
  create-account   Open an account in a currency
  transfer         Send funds to another account
  convert          Exchange funds between two of your accounts
  rates            Show exchange rates
  card             Show the virtual card
  issue-card       Issue a virtual card
  card-credit      Move funds from USD onto the card
  card-debit       Move funds from the card back to USD
  transactions     Page through transactions

Examples:
  bankcli register --username=alice --password=secret --first-name=Alice --last-name=Doe
  bankcli login --username=alice --password=secret
  bankcli create-account --code=USD --label=Main
  bankcli transfer --code=USD --to=4829301842 --amount=25.00 --preview
  bankcli transactions --page=1
  bankcli transactions --card=<card-id>
`

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in, run 'bankcli login' first")

type command func(ctx context.Context, d *Dependencies, args []string) error

var commands = map[string]command{
	"register":       runRegister,
	"login":          runLogin,
	"logout":         runLogout,
	"dashboard":      runDashboard,
	"accounts":       runAccounts,
	"create-account": runCreateAccount,
	"transfer":       runTransfer,
	"convert":        runConvert,
	"rates":          runRates,
	"card":           runCard,
	"issue-card":     runIssueCard,
	"card-credit":    runCardAdjust(card.Credit),
	"card-debit":     runCardAdjust(card.Debit),
	"transactions":   runTransactions,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	name := os.Args[1]
	switch name {
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	if err := run(cmd, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closer, err := logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warnf("Telemetry shutdown: %v", err)
		}
	}()

	d, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if _, err := d.Session.Restore(ctx); err != nil {
		log.Warnf("Could not restore session: %v", err)
	}

	return cmd(ctx, d, args)
}

func parseFlags(name string, args []string, define func(fs *flag.FlagSet)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	define(fs)
	fs.Usage = func() {
		fmt.Printf("Usage: bankcli %s [options]\n\nOptions:\n", name)
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func requireSession(d *Dependencies) error {
	if !d.Session.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}

// report prints a view notice and turns an error notice into a failure.
func report(n view.Notice) error {
	if n.IsZero() {
		return nil
	}
	if n.Kind == view.KindError {
		return errors.New(n.Text)
	}
	fmt.Println(n.Text)
	return nil
}

func runRegister(ctx context.Context, d *Dependencies, args []string) error {
	var params session.RegisterParams
	if err := parseFlags("register", args, func(fs *flag.FlagSet) {
		fs.StringVar(&params.Username, "username", "", "Username")
		fs.StringVar(&params.Password, "password", "", "Password")
		fs.StringVar(&params.FirstName, "first-name", "", "First name")
		fs.StringVar(&params.LastName, "last-name", "", "Last name")
	}); err != nil {
		return err
	}

	v := view.NewRegisterView(d.Session)
	_ = v.Submit(ctx, params)
	return report(v.Notice())
}

func runLogin(ctx context.Context, d *Dependencies, args []string) error {
	var username, password string
	if err := parseFlags("login", args, func(fs *flag.FlagSet) {
		fs.StringVar(&username, "username", "", "Username")
		fs.StringVar(&password, "password", "", "Password")
	}); err != nil {
		return err
	}

	v := view.NewLoginView(d.Session)
	profile, err := v.Submit(ctx, username, password)
	if err != nil {
		return report(v.Notice())
	}
	fmt.Printf("Signed in as %s\n", profile.DisplayName())
	return nil
}

func runLogout(ctx context.Context, d *Dependencies, _ []string) error {
	d.Session.Logout(ctx)
	fmt.Println("Signed out")
	return nil
}

func runDashboard(ctx context.Context, d *Dependencies, _ []string) error {
	if err := requireSession(d); err != nil {
		return err
	}
	v := view.NewDashboardView(d.Session, d.Accounts, d.Feed)
	defer v.Close()
	v.Wait()

	state := v.State()
	fmt.Printf("Welcome, %s\n\n", v.User().DisplayName())
	printAccounts(state.Accounts)
	fmt.Println()
	printTransactions(state.Transactions)
	return report(state.Notice)
}

func runAccounts(ctx context.Context, d *Dependencies, _ []string) error {
	if err := requireSession(d); err != nil {
		return err
	}
	v := view.NewAccountsView(d.Session, d.Accounts)
	defer v.Close()
	v.Wait()

	state := v.State()
	printAccounts(state.Accounts)
	return report(state.Notice)
}

func runCreateAccount(ctx context.Context, d *Dependencies, args []string) error {
	var params account.CreateParams
	if err := parseFlags("create-account", args, func(fs *flag.FlagSet) {
		fs.StringVar(&params.Code, "code", "", "Currency code, one of "+strings.Join(account.SupportedCurrencies(), " "))
		fs.StringVar(&params.Label, "label", "", "Optional account label")
	}); err != nil {
		return err
	}
	if err := requireSession(d); err != nil {
		return err
	}

	v := view.NewAccountsView(d.Session, d.Accounts)
	defer v.Close()
	v.Wait()

	v.OpenCreate()
	v.EditCreate(params)
	_ = v.SubmitCreate(ctx)

	state := v.State()
	printAccounts(state.Accounts)
	return report(state.Notice)
}

func runTransfer(ctx context.Context, d *Dependencies, args []string) error {
	var (
		params  account.TransferParams
		preview bool
	)
	if err := parseFlags("transfer", args, func(fs *flag.FlagSet) {
		fs.StringVar(&params.Code, "code", "", "Currency code of the sending account")
		fs.StringVar(&params.Recipient, "to", "", "Recipient account number")
		fs.StringVar(&params.Amount, "amount", "", "Amount to send")
		fs.BoolVar(&preview, "preview", false, "Look up the recipient before sending")
	}); err != nil {
		return err
	}
	if err := requireSession(d); err != nil {
		return err
	}

	v := view.NewAccountsView(d.Session, d.Accounts)
	defer v.Close()
	v.Wait()

	v.OpenTransfer()
	v.EditTransfer(params)
	if preview {
		recipient, err := v.PreviewRecipient(ctx)
		if err != nil {
			return report(v.State().Notice)
		}
		fmt.Printf("Recipient: %s (%s)\n", recipient.AccountName, recipient.Code)
	}
	_ = v.SubmitTransfer(ctx)

	state := v.State()
	printAccounts(state.Accounts)
	return report(state.Notice)
}

func runConvert(ctx context.Context, d *Dependencies, args []string) error {
	var params account.ConvertParams
	if err := parseFlags("convert", args, func(fs *flag.FlagSet) {
		fs.StringVar(&params.FromCurrency, "from", "", "Currency to convert from")
		fs.StringVar(&params.ToCurrency, "to", "", "Currency to convert to")
		fs.StringVar(&params.Amount, "amount", "", "Amount in the source currency")
	}); err != nil {
		return err
	}
	if err := requireSession(d); err != nil {
		return err
	}

	v := view.NewAccountsView(d.Session, d.Accounts)
	defer v.Close()
	v.Wait()

	v.OpenConvert()
	v.EditConvert(params)
	_ = v.SubmitConvert(ctx)

	state := v.State()
	printAccounts(state.Accounts)
	return report(state.Notice)
}

func runRates(ctx context.Context, d *Dependencies, _ []string) error {
	if err := requireSession(d); err != nil {
		return err
	}
	rates, err := d.Accounts.Rates(ctx)
	if err != nil {
		return errors.New(view.UserMessage(err, "Failed to load exchange rates."))
	}

	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("  %-4s %s\n", code, rates[code])
	}
	return nil
}

func runCard(ctx context.Context, d *Dependencies, _ []string) error {
	if err := requireSession(d); err != nil {
		return err
	}
	v := view.NewCardsView(d.Session, d.Cards)
	defer v.Close()
	v.Wait()

	state := v.State()
	printCard(state)
	return report(state.Notice)
}

func runIssueCard(ctx context.Context, d *Dependencies, _ []string) error {
	if err := requireSession(d); err != nil {
		return err
	}
	v := view.NewCardsView(d.Session, d.Cards)
	defer v.Close()
	v.Wait()

	if !v.State().CanIssue() {
		printCard(v.State())
		return report(v.State().Notice)
	}
	_ = v.Issue(ctx)

	state := v.State()
	printCard(state)
	return report(state.Notice)
}

func runCardAdjust(direction card.Direction) command {
	name := "card-" + string(direction)
	return func(ctx context.Context, d *Dependencies, args []string) error {
		var amount string
		if err := parseFlags(name, args, func(fs *flag.FlagSet) {
			fs.StringVar(&amount, "amount", "", "Amount in USD")
		}); err != nil {
			return err
		}
		if err := requireSession(d); err != nil {
			return err
		}

		v := view.NewCardsView(d.Session, d.Cards)
		defer v.Close()
		v.Wait()

		v.SetAmount(amount)
		if direction == card.Credit {
			_ = v.Credit(ctx)
		} else {
			_ = v.Debit(ctx)
		}

		state := v.State()
		printCard(state)
		return report(state.Notice)
	}
}

func runTransactions(ctx context.Context, d *Dependencies, args []string) error {
	var (
		page              int
		cardID, accountID string
	)
	if err := parseFlags("transactions", args, func(fs *flag.FlagSet) {
		fs.IntVar(&page, "page", 1, "Page number, starting at 1")
		fs.StringVar(&cardID, "card", "", "Only transactions of this card")
		fs.StringVar(&accountID, "account", "", "Only transactions of this account")
	}); err != nil {
		return err
	}
	if err := requireSession(d); err != nil {
		return err
	}
	n := page - 1

	if cardID != "" || accountID != "" {
		var (
			p   transaction.Page
			err error
		)
		if cardID != "" {
			p, err = d.Feed.CardPage(ctx, cardID, n)
		} else {
			p, err = d.Feed.AccountPage(ctx, accountID, n)
		}
		if err != nil {
			return errors.New(view.UserMessage(err, "Failed to load transactions."))
		}
		printPage(p)
		return nil
	}

	v := view.NewTransactionsView(d.Session, d.Feed)
	defer v.Close()
	v.Wait()

	if n != 0 {
		_ = v.GoTo(ctx, n)
	}
	state := v.State()
	printPage(state.Page)
	return report(state.Notice)
}

func printAccounts(accounts []account.Account) {
	if len(accounts) == 0 {
		return
	}
	fmt.Println("Accounts:")
	for _, a := range accounts {
		label := a.Label
		if label == "" {
			label = a.AccountName
		}
		fmt.Printf("  %-10d %-4s %14s  %s\n", a.AccountNumber, a.Code, a.DisplayBalance(), label)
	}
}

func printTransactions(txs []transaction.Transaction) {
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	fmt.Println("Transactions:")
	for _, tx := range txs {
		fmt.Printf("  %-19s %-10s %-9s %12s  %s\n", tx.CreatedAt, tx.Type, tx.Status, tx.DisplayAmount(), tx.Description)
	}
}

func printPage(p transaction.Page) {
	fmt.Printf("Page %d\n", p.Number+1)
	printTransactions(p.Items)
	if p.HasMore {
		fmt.Printf("More: bankcli transactions --page=%d\n", p.Number+2)
	}
}

func printCard(state view.CardsState) {
	switch {
	case state.Unavailable:
	case state.Card.Status == card.StatusAbsent:
		fmt.Println("No card issued yet. Run 'bankcli issue-card'.")
	case state.Card.Card != nil:
		c := state.Card.Card
		fmt.Printf("Card %s  exp %s\n", c.FormattedNumber(), c.ExpiryLabel())
		fmt.Printf("Holder  %s\n", c.CardHolder)
		fmt.Printf("Balance %s\n", money.Display("$", c.Balance))
	}
}
