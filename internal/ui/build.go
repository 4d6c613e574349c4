// Package ui turns business state into a component tree. Everything here is
// pure: the same state and handlers always produce the same tree.
package ui

import (
	"fmt"

	"finance-viewer/internal/component"
	"finance-viewer/internal/models"
)

// Handlers are the user actions the tree can trigger.
type Handlers struct {
	SignIn  func()
	Refresh func()
}

// Build produces the whole window tree for state.
func Build(state *models.State, h Handlers) component.Component {
	page := loading(state.Auth, "sign in", "Signing in...",
		func() component.Component { return signInPage(h) },
		func(auth models.AuthParams) component.Component { return userPage(state, auth, h) },
	)
	return component.Node(component.Key(MainBox, ""), page)
}

// loading renders a field according to its request phase. Failed fields show
// the error above the idle content so the action can be retried.
func loading[T any](f models.Field[T], key, msg string, idle func() component.Component, ready func(T) component.Component) component.Component {
	switch f.Phase {
	case models.Loading:
		return loadingFrame(msg, key)
	case models.Ready:
		return ready(f.Value)
	case models.Failed:
		errKey := key + "-error"
		return component.Group(errKey, labelFrame(f.Err, errKey), idle())
	default:
		return idle()
	}
}

func labelFrame(text, id string) component.Component {
	label := component.Leaf(component.Key(SomeLabel, id)).WithAttribute(AttrText, text)
	return component.Node(component.Key(LabelFrame, id), label)
}

func loadingFrame(text, id string) component.Component {
	return labelFrame(text, id).WithChildren(component.Leaf(component.Key(LoadingBar, id)))
}

func signInPage(h Handlers) component.Component {
	return component.Leaf(component.Key(SignInButton, "")).
		WithAttribute(AttrLabel, "Sign in!").
		WithCallback(EventClicked, h.SignIn)
}

func userPage(state *models.State, auth models.AuthParams, h Handlers) component.Component {
	token := labelFrame("You are signed in! Your access token is: "+auth.AccessToken, "access token label")

	refresh := component.Leaf(component.Key(GetTransButton, "")).
		WithAttribute(AttrLabel, "Refresh").
		WithCallback(EventClicked, h.Refresh)

	balances := loading(state.Accounts, "balances", "Getting Balances...",
		func() component.Component { return component.Group("balnone") },
		accounts,
	)
	transactions := loading(state.Transactions, "transactions", "Getting Transactions...",
		func() component.Component { return component.Group("transempty") },
		transBox,
	)
	return component.Group("user_page", token, refresh, balances, transactions)
}

func accounts(a models.Accounts) component.Component {
	children := make([]component.Component, 0, len(a.Accounts)+1)
	children = append(children, labelFrame("Accounts: ", "accounts_frame"))
	for _, acct := range a.Accounts {
		children = append(children, acctBox(acct))
	}
	return component.Node(component.Key(AccountBox, "main"), children...).
		WithAttribute(AttrOrientation, Horizontal)
}

func acctBox(acct models.Account) component.Component {
	lines := []string{
		"Name: " + acct.Name,
		"Available Balance: " + acct.Balances.AvailableOrZero().StringFixed(2),
		"Current Balance: " + acct.Balances.Current.StringFixed(2),
	}
	children := make([]component.Component, len(lines))
	for i, l := range lines {
		children[i] = labelFrame(l, fmt.Sprintf("%s-%d", acct.AccountID, i+1))
	}
	return component.Node(component.Key(AccountBox, acct.AccountID), children...).
		WithAttribute(AttrOrientation, Vertical)
}

func transBox(tr models.Transactions) component.Component {
	children := make([]component.Component, 0, len(tr.Transactions)+1)
	children = append(children, labelFrame("Transactions: ", "trans_frame"))
	for _, t := range tr.Transactions {
		children = append(children, transRow(t))
	}
	return component.Node(component.Key(TransBox, ""), children...)
}

func transRow(t models.Transaction) component.Component {
	entries := []string{t.Amount.StringFixed(2), t.Date, t.Name, t.TransactionType}
	children := make([]component.Component, len(entries))
	for i, e := range entries {
		children[i] = labelFrame(e, fmt.Sprintf("%s-%d", t.TransactionID, i+1))
	}
	return component.Node(component.Key(TransRow, t.TransactionID), children...).
		WithAttribute(AttrOrientation, Horizontal)
}
