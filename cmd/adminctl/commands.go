package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/utafrali/DeliveryConsole/internal/api"
	"github.com/utafrali/DeliveryConsole/internal/app"
	"github.com/utafrali/DeliveryConsole/internal/domain"
	"github.com/utafrali/DeliveryConsole/internal/realtime"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/query"
)

type env struct {
	app *app.App
	fs  *flag.FlagSet
	out io.Writer
}

// parse parses the command's flags. Every command takes flags only, so a
// leftover argument is an error rather than silently dropped.
func (e *env) parse(args []string) error {
	if err := e.fs.Parse(args); err != nil {
		return err
	}
	if e.fs.NArg() > 0 {
		return apperrors.InvalidInput(fmt.Sprintf("unexpected argument %q", e.fs.Arg(0)))
	}
	return nil
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) (any, error)
}

var commands = map[string]command{
	"login":             {"log in with -email and -password", cmdLogin},
	"register":          {"create an account from a JSON file (-f)", cmdRegister},
	"logout":            {"clear the local session", cmdLogout},
	"whoami":            {"show the logged-in operator", cmdWhoami},
	"users":             {"list users", cmdUsers},
	"delete-user":       {"delete a user by -id", cmdDeleteUser},
	"restaurants":       {"list restaurants", cmdRestaurants},
	"create-restaurant": {"create a restaurant from a JSON file (-f)", cmdCreateRestaurant},
	"update-restaurant": {"update restaurant -id from a JSON file (-f)", cmdUpdateRestaurant},
	"restaurant-status": {"set restaurant -id to -status", cmdRestaurantStatus},
	"delete-restaurant": {"delete a restaurant by -id", cmdDeleteRestaurant},
	"cuisines":          {"list cuisines", cmdCuisines},
	"partners":          {"list delivery partners", cmdPartners},
	"onboard-partner":   {"onboard a delivery partner from a JSON file (-f)", cmdOnboardPartner},
	"update-partner":    {"update delivery partner -id from a JSON file (-f)", cmdUpdatePartner},
	"partner-status":    {"set delivery partner -id to -status", cmdPartnerStatus},
	"partner-online":    {"set delivery partner -id -online=true|false", cmdPartnerOnline},
	"delete-partner":    {"delete a delivery partner by -id", cmdDeletePartner},
	"orders":            {"list orders", cmdOrders},
	"order-status":      {"set order -id to -status", cmdOrderStatus},
	"bags":              {"list surprise bags", cmdBags},
	"bags-grouped":      {"list surprise bags grouped by restaurant", cmdBagsGrouped},
	"create-bag":        {"create a surprise bag from a JSON file (-f)", cmdCreateBag},
	"settings":          {"show platform settings", cmdSettings},
	"update-settings":   {"replace platform settings from a JSON file (-f)", cmdUpdateSettings},
	"finance":           {"show financial summaries (-kind restaurants|partners)", cmdFinance},
	"stats":             {"show dashboard counters", cmdStats},
	"upload":            {"upload an image (-kind restaurant|bag -file path)", cmdUpload},
	"watch":             {"stream realtime events and serve ops endpoints", cmdWatch},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: adminctl <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
}

// optionalBool is a flag that stays nil unless set. It always takes a value,
// so "-online false" and "-online=false" mean the same thing.
type optionalBool struct{ v *bool }

func (b *optionalBool) String() string {
	if b.v == nil {
		return ""
	}
	return fmt.Sprint(*b.v)
}

func (b *optionalBool) Set(s string) error {
	var v bool
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	b.v = &v
	return nil
}

// listFlag collects a comma-separated or repeated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// dateFlag parses YYYY-MM-DD.
type dateFlag struct{ t time.Time }

func (d *dateFlag) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(query.DateLayout)
}

func (d *dateFlag) Set(s string) error {
	t, err := time.Parse(query.DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	d.t = t
	return nil
}

func requireID(id string) error {
	if id == "" {
		return apperrors.InvalidInput("-id is required")
	}
	return nil
}

func readJSONFile(path string, out any) error {
	if path == "" {
		return apperrors.InvalidInput("-f is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("%s: %v", path, err))
	}
	return nil
}

func cmdLogin(ctx context.Context, e *env, args []string) (any, error) {
	email := e.fs.String("email", "", "account email")
	password := e.fs.String("password", os.Getenv("ADMINCTL_PASSWORD"), "account password (or ADMINCTL_PASSWORD)")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	res, err := e.app.API().Login(ctx, *email, *password)
	if err != nil {
		return nil, err
	}
	return res.User, nil
}

func cmdRegister(ctx context.Context, e *env, args []string) (any, error) {
	file := e.fs.String("f", "", "JSON file with the account")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.RegisterRequest
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().Register(ctx, in)
}

func cmdLogout(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return nil, e.app.API().Logout(ctx)
}

func cmdWhoami(_ context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	user := e.app.Session().User()
	if user == nil {
		return nil, apperrors.InvalidInput("not logged in")
	}
	return user, nil
}

func cmdUsers(ctx context.Context, e *env, args []string) (any, error) {
	var f api.UserFilter
	var active optionalBool
	e.fs.StringVar(&f.Search, "search", "", "search text")
	e.fs.StringVar(&f.UserType, "type", "", "user type")
	e.fs.Var(&active, "active", "only active (true) or inactive (false) users")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	f.IsActive = active.v
	return e.app.API().GetAllUsers(ctx, f)
}

func cmdDeleteUser(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "user id")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	if err := requireID(*id); err != nil {
		return nil, err
	}
	return e.app.API().DeleteUser(ctx, *id)
}

func cmdRestaurants(ctx context.Context, e *env, args []string) (any, error) {
	var f api.RestaurantFilter
	e.fs.StringVar(&f.Search, "search", "", "search text")
	e.fs.StringVar(&f.Status, "status", "", "restaurant status")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().GetAllRestaurants(ctx, f)
}

func cmdCreateRestaurant(ctx context.Context, e *env, args []string) (any, error) {
	file := e.fs.String("f", "", "JSON file with the restaurant")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.RestaurantInput
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().CreateRestaurant(ctx, in)
}

func cmdUpdateRestaurant(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "restaurant id")
	file := e.fs.String("f", "", "JSON file with the restaurant")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.RestaurantInput
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().UpdateRestaurant(ctx, *id, in)
}

func cmdRestaurantStatus(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "restaurant id")
	status := e.fs.String("status", "", "new status")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().UpdateRestaurantStatus(ctx, *id, *status)
}

func cmdDeleteRestaurant(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "restaurant id")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().DeleteRestaurant(ctx, *id)
}

func cmdCuisines(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().GetCuisines(ctx)
}

func cmdPartners(ctx context.Context, e *env, args []string) (any, error) {
	var f api.DeliveryPartnerFilter
	var online optionalBool
	e.fs.StringVar(&f.Search, "search", "", "search text")
	e.fs.StringVar(&f.Status, "status", "", "partner status")
	e.fs.Var(&online, "online", "only online (true) or offline (false) partners")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	f.IsOnline = online.v
	return e.app.API().GetAllDeliveryPartners(ctx, f)
}

func cmdOnboardPartner(ctx context.Context, e *env, args []string) (any, error) {
	file := e.fs.String("f", "", "JSON file with the partner")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.DeliveryPartnerInput
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().OnboardDeliveryPartner(ctx, in)
}

func cmdUpdatePartner(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "partner id")
	file := e.fs.String("f", "", "JSON file with the partner")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.DeliveryPartnerInput
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().UpdateDeliveryPartner(ctx, *id, in)
}

func cmdPartnerStatus(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "partner id")
	status := e.fs.String("status", "", "new status")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().UpdateDeliveryPartnerStatus(ctx, *id, *status)
}

func cmdPartnerOnline(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "partner id")
	var online optionalBool
	e.fs.Var(&online, "online", "true or false")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	if online.v == nil {
		return nil, apperrors.InvalidInput("-online is required")
	}
	return e.app.API().SetDeliveryPartnerOnline(ctx, *id, *online.v)
}

func cmdDeletePartner(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "partner id")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().DeleteDeliveryPartner(ctx, *id)
}

func cmdOrders(ctx context.Context, e *env, args []string) (any, error) {
	var f api.OrderFilter
	var start, end dateFlag
	var restaurants listFlag
	e.fs.StringVar(&f.Search, "search", "", "search text")
	e.fs.StringVar(&f.Status, "status", "", "order status")
	e.fs.Var(&start, "from", "start date (YYYY-MM-DD)")
	e.fs.Var(&end, "to", "end date (YYYY-MM-DD)")
	e.fs.Var(&restaurants, "restaurant", "restaurant id, repeatable or comma-separated")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	f.StartDate, f.EndDate, f.RestaurantIDs = start.t, end.t, restaurants
	return e.app.API().GetAllOrders(ctx, f)
}

func cmdOrderStatus(ctx context.Context, e *env, args []string) (any, error) {
	id := e.fs.String("id", "", "order id")
	status := e.fs.String("status", "", "one of "+strings.Join(domain.ValidOrderStatuses(), ", "))
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().UpdateOrderStatus(ctx, *id, *status)
}

func cmdBags(ctx context.Context, e *env, args []string) (any, error) {
	var f api.SurpriseBagFilter
	var restaurants listFlag
	e.fs.StringVar(&f.Search, "search", "", "search text")
	e.fs.StringVar(&f.Status, "status", "", "bag status")
	e.fs.Var(&restaurants, "restaurant", "restaurant id, repeatable or comma-separated")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	f.RestaurantIDs = restaurants
	return e.app.API().GetSurpriseBags(ctx, f)
}

func cmdBagsGrouped(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().GetGroupedSurpriseBags(ctx)
}

func cmdCreateBag(ctx context.Context, e *env, args []string) (any, error) {
	file := e.fs.String("f", "", "JSON file with the surprise bag")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var in domain.SurpriseBagInput
	if err := readJSONFile(*file, &in); err != nil {
		return nil, err
	}
	return e.app.API().CreateSurpriseBag(ctx, in)
}

func cmdSettings(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().GetSettings(ctx)
}

func cmdUpdateSettings(ctx context.Context, e *env, args []string) (any, error) {
	file := e.fs.String("f", "", "JSON file with the settings object")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	var s domain.Settings
	if err := readJSONFile(*file, &s); err != nil {
		return nil, err
	}
	return e.app.API().UpdateSettings(ctx, s)
}

func cmdFinance(ctx context.Context, e *env, args []string) (any, error) {
	kind := e.fs.String("kind", "restaurants", "restaurants or partners")
	var start, end dateFlag
	e.fs.Var(&start, "from", "start date (YYYY-MM-DD)")
	e.fs.Var(&end, "to", "end date (YYYY-MM-DD)")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	r := api.DateRange{Start: start.t, End: end.t}
	switch *kind {
	case "restaurants":
		return e.app.API().GetRestaurantFinancials(ctx, r)
	case "partners":
		return e.app.API().GetDeliveryPartnerFinancials(ctx, r)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown -kind %q", *kind))
	}
}

func cmdStats(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	return e.app.API().GetDashboardStats(ctx)
}

func cmdUpload(ctx context.Context, e *env, args []string) (any, error) {
	kind := e.fs.String("kind", "restaurant", "restaurant or bag")
	path := e.fs.String("file", "", "image file")
	if err := e.parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, apperrors.InvalidInput("-file is required")
	}
	f, err := os.Open(*path)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	defer f.Close()

	name := filepath.Base(*path)
	switch *kind {
	case "restaurant":
		return e.app.API().UploadRestaurantImage(ctx, name, f)
	case "bag":
		return e.app.API().UploadSurpriseBagImage(ctx, name, f)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown -kind %q", *kind))
	}
}

// eventLine is one line of watch output.
type eventLine struct {
	Time    time.Time       `json:"time"`
	Event   realtime.Event  `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func cmdWatch(ctx context.Context, e *env, args []string) (any, error) {
	if err := e.parse(args); err != nil {
		return nil, err
	}
	enc := json.NewEncoder(e.out)
	err := e.app.Watch(ctx, func(event realtime.Event, payload json.RawMessage) {
		_ = enc.Encode(eventLine{Time: time.Now().UTC(), Event: event, Payload: payload})
	})
	if errors.Is(err, realtime.ErrNoSession) {
		return nil, apperrors.InvalidInput("not logged in")
	}
	return nil, err
}
