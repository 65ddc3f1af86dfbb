// Package view renders storefront state as plain text. It is the observer the
// session and cart stores refresh.
package view

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/yashrajoria/course-store/storefront/cart"
)

// Terminal implements session.ProfileView, session.Navigator and cart.Badge.
// Refreshes only record state; Header prints it.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	currency string

	loggedIn bool
	name     string
	avatar   string
	count    int
	landed   bool
}

func NewTerminal(out io.Writer, currency string) *Terminal {
	return &Terminal{out: out, currency: currency}
}

func (t *Terminal) ShowLoggedIn(name, avatar string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loggedIn, t.name, t.avatar = true, name, avatar
}

func (t *Terminal) ShowLoggedOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loggedIn, t.name, t.avatar = false, "", ""
}

func (t *Terminal) ToLanding() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.landed = true
}

func (t *Terminal) SetCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = n
}

// Header prints the profile area and the cart badge on one line.
func (t *Terminal) Header() {
	t.mu.Lock()
	defer t.mu.Unlock()

	profile := "[Login]"
	if t.loggedIn {
		profile = fmt.Sprintf("(%s) %s", t.avatar, t.name)
	}
	fmt.Fprintf(t.out, "%s  cart: %d\n", profile, t.count)
	if t.landed {
		fmt.Fprintln(t.out, "-> back to the course catalogue")
		t.landed = false
	}
}

// Cart prints the items and the total.
func (t *Terminal) Cart(items []cart.Item, total float64) {
	if len(items) == 0 {
		fmt.Fprintln(t.out, "Your cart is empty.")
		return
	}
	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOURSE\tPRICE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.ID, it.Title, t.Money(it.Price))
	}
	fmt.Fprintf(w, "\tTOTAL\t%s\n", t.Money(total))
	_ = w.Flush()
}

func (t *Terminal) Message(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

// Money formats v with the configured currency label.
func (t *Terminal) Money(v float64) string {
	return strings.TrimSpace(t.currency + " " + humanize.CommafWithDigits(v, 2))
}
