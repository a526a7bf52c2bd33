// Package handlers implements the bridge's HTTP endpoints.
package handlers

import (
	"net/http"
	"strings"

	"cosmossdk.io/log"
	"github.com/labstack/echo/v4"

	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/keys"
)

// GreetingHandlers serves the greeting and account endpoints.
type GreetingHandlers struct {
	greeter Greeter
	store   CredentialStore
	logger  log.Logger
}

// NewGreetingHandlers returns handlers backed by greeter and store.
func NewGreetingHandlers(greeter Greeter, store CredentialStore, logger log.Logger) *GreetingHandlers {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &GreetingHandlers{greeter: greeter, store: store, logger: logger.With("module", "handlers")}
}

// network parses the :network path parameter.
func network(c echo.Context) (config.Network, error) {
	return config.ParseNetwork(c.Param("network"))
}

// AccountsHandler lists the accounts that have stored credentials.
func (h *GreetingHandlers) AccountsHandler(c echo.Context) error {
	n, err := network(c)
	if err != nil {
		return fail(c, echo.NewHTTPError(http.StatusNotFound, err.Error()))
	}
	creds, err := h.store.List(n)
	if err != nil {
		return writeError(c, err, nil)
	}
	accounts := make([]AccountResponse, 0, len(creds))
	for _, cred := range creds {
		accounts = append(accounts, AccountResponse{
			AccountID: cred.AccountID,
			PublicKey: cred.PublicKey,
			CanSign:   cred.CanSign(),
		})
	}
	return c.JSON(http.StatusOK, accounts)
}

// GetGreetingHandler reads the current greeting.
func (h *GreetingHandlers) GetGreetingHandler(c echo.Context) error {
	n, err := network(c)
	if err != nil {
		return fail(c, echo.NewHTTPError(http.StatusNotFound, err.Error()))
	}
	cfg, err := h.greeter.Config(n)
	if err != nil {
		return writeError(c, err, nil)
	}
	greeting, err := h.greeter.Greeting(c.Request().Context(), n)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, GreetingResponse{
		Network:    cfg.NetworkID,
		ContractID: cfg.ContractID,
		Greeting:   greeting,
	})
}

// PreviewGreetingHandler describes the update transaction without sending it.
func (h *GreetingHandlers) PreviewGreetingHandler(c echo.Context) error {
	u, err := h.bindUpdate(c)
	if err != nil {
		return fail(c, err)
	}
	preview, err := h.greeter.Preview(u.network, u.cred, client.SetGreetingMethod, map[string]string{"greeting": u.greeting})
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, preview)
}

// UpdateGreetingHandler submits set_greeting and waits for the final outcome.
func (h *GreetingHandlers) UpdateGreetingHandler(c echo.Context) error {
	u, err := h.bindUpdate(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.greeter.SetGreeting(c.Request().Context(), u.network, u.cred, u.greeting)
	if err != nil {
		h.logger.Info("greeting update failed", "network", u.network.Section(), "account", u.cred.AccountID, "err", err)
		return writeError(c, err, out)
	}
	resp := UpdateGreetingResponse{Outcome: out}
	if cfg, err := h.greeter.Config(u.network); err == nil {
		resp.TransactionURL = cfg.TransactionURL(out.TransactionID)
	}
	return c.JSON(http.StatusOK, resp)
}

type update struct {
	network  config.Network
	cred     keys.Credential
	greeting string
}

// bindUpdate parses an update request and loads the signer's credential.
func (h *GreetingHandlers) bindUpdate(c echo.Context) (update, error) {
	n, err := network(c)
	if err != nil {
		return update{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	var req UpdateGreetingRequest
	if err := c.Bind(&req); err != nil {
		return update{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" {
		return update{}, echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}
	if strings.TrimSpace(req.Greeting) == "" {
		return update{}, echo.NewHTTPError(http.StatusBadRequest, "greeting is required")
	}
	cred, err := h.store.Get(n, req.AccountID)
	if err != nil {
		return update{}, err
	}
	return update{network: n, cred: cred, greeting: req.Greeting}, nil
}
