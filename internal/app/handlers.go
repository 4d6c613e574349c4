package app

import (
	"encoding/json"
	"fmt"

	"finance-viewer/internal/events"
	"finance-viewer/internal/models"
)

// Handlers turns user actions into requests and drained responses into
// business state. Everything here runs on the fyne main goroutine.
type Handlers struct {
	app *Application
}

func NewHandlers(a *Application) *Handlers {
	return &Handlers{app: a}
}

func (h *Handlers) HandleSignIn() {
	a := h.app
	if !a.machine.Dispatch(a.state.Snapshot(), KindSignIn) {
		return
	}
	a.state.Auth.Start()
	a.BuildUI()
}

func (h *Handlers) HandleRefresh() {
	if h.requestAccountData() {
		h.app.BuildUI()
	}
}

// requestAccountData fetches balances and transactions together.
func (h *Handlers) requestAccountData() bool {
	a := h.app
	if !a.state.SignedIn() {
		return false
	}
	if !a.machine.Dispatch(a.state.Snapshot(), KindBalances, KindTransactions) {
		a.logger.Debug("Handlers", "account data already loading", nil)
		return false
	}
	a.state.Accounts.Start()
	a.state.Transactions.Start()
	return true
}

// HandleResponse applies one drained status. The machine rebuilds the UI once
// after all statuses of a tick have been applied.
func (h *Handlers) HandleResponse(kind events.Kind, status events.Status) {
	a := h.app
	switch kind {
	case KindSignIn:
		if !resolve(&a.state.Auth, status) {
			return
		}
		if a.state.Auth.Value.AccessToken == "" {
			a.state.Auth.Fail("sign in response carried no access token")
			return
		}
		a.logger.Info("Handlers", "signed in", map[string]interface{}{
			"item_id": a.state.Auth.Value.ItemID,
		})
		h.requestAccountData()
	case KindBalances:
		if resolve(&a.state.Accounts, status) {
			a.logger.Info("Handlers", "balances loaded", map[string]interface{}{
				"accounts": len(a.state.Accounts.Value.Accounts),
			})
		}
	case KindTransactions:
		if resolve(&a.state.Transactions, status) {
			a.logger.Info("Handlers", "transactions loaded", map[string]interface{}{
				"transactions": len(a.state.Transactions.Value.Transactions),
				"total":        a.state.Transactions.Value.Total().StringFixed(2),
			})
		}
	default:
		a.logger.Warning("Handlers", "response for unknown request kind", map[string]interface{}{
			"kind": string(kind),
		})
	}
}

type validator interface {
	Validate() error
}

// resolve stores a terminal status into f and reports whether it succeeded.
func resolve[T any](f *models.Field[T], status events.Status) bool {
	if status.State == events.Failed {
		f.Fail(status.Err)
		return false
	}
	var v T
	if err := json.Unmarshal(status.Payload, &v); err != nil {
		f.Fail(fmt.Sprintf("decode response: %v", err))
		return false
	}
	if val, ok := any(v).(validator); ok {
		if err := val.Validate(); err != nil {
			f.Fail(fmt.Sprintf("invalid response: %v", err))
			return false
		}
	}
	f.Resolve(v)
	return true
}
