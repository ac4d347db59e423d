// Package robinhood places market orders through the Robinhood REST API.
package robinhood

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/rustyeddy/stocktrader/broker"
)

const (
	DefaultBaseURL = "https://api.robinhood.com"
	// Public client id used by the Robinhood web app.
	DefaultClientID = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"

	venue = "robinhood"
)

var (
	ErrNotLoggedIn = errors.New("robinhood: not logged in")
	ErrMFARequired = errors.New("robinhood: mfa code required")
)

type Options struct {
	BaseURL  string
	ClientID string
	Username string
	Password string
	MFACode  string
	Timeout  time.Duration
}

type Client struct {
	http *resty.Client
	opts Options

	mu          sync.Mutex
	token       string
	accountURL  string
	instruments map[string]instrument
}

type instrument struct {
	URL    string `json:"url"`
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	MFARequired bool   `json:"mfa_required"`
}

type apiError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (e apiError) message(status int) string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Error != "":
		return e.Error
	default:
		return "http " + strconv.Itoa(status)
	}
}

func New(opts Options) (*Client, error) {
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("robinhood: missing username or password")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:        hc,
		opts:        opts,
		instruments: make(map[string]instrument),
	}, nil
}

// Login exchanges the password for a bearer token and resolves the
// account URL. Safe to call more than once.
func (c *Client) Login(ctx context.Context) error {
	form := map[string]string{
		"grant_type":   "password",
		"scope":        "internal",
		"client_id":    c.opts.ClientID,
		"expires_in":   "86400",
		"username":     c.opts.Username,
		"password":     c.opts.Password,
		"device_token": uuid.NewString(),
	}
	if c.opts.MFACode != "" {
		form["mfa_code"] = c.opts.MFACode
	}

	var tr tokenResp
	var ae apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&tr).
		SetError(&ae).
		Post("/oauth2/token/")
	if err != nil {
		return fmt.Errorf("robinhood login: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("robinhood login: %s", ae.message(resp.StatusCode()))
	}
	if tr.MFARequired {
		return ErrMFARequired
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("robinhood login: empty access token")
	}

	c.mu.Lock()
	c.token = tr.AccessToken
	c.mu.Unlock()

	acct, err := c.account(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accountURL = acct
	c.mu.Unlock()
	return nil
}

func (c *Client) authed(ctx context.Context) (*resty.Request, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return c.http.R().SetContext(ctx).SetAuthToken(token), nil
}

func (c *Client) account(ctx context.Context) (string, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return "", err
	}

	var out struct {
		Results []struct {
			URL string `json:"url"`
		} `json:"results"`
	}
	var ae apiError
	resp, err := req.SetResult(&out).SetError(&ae).Get("/accounts/")
	if err != nil {
		return "", fmt.Errorf("robinhood accounts: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("robinhood accounts: %s", ae.message(resp.StatusCode()))
	}
	if len(out.Results) == 0 {
		return "", fmt.Errorf("robinhood accounts: no account on login")
	}
	return out.Results[0].URL, nil
}

func (c *Client) instrument(ctx context.Context, symbol string) (instrument, error) {
	c.mu.Lock()
	in, ok := c.instruments[symbol]
	c.mu.Unlock()
	if ok {
		return in, nil
	}

	req, err := c.authed(ctx)
	if err != nil {
		return instrument{}, err
	}

	var out struct {
		Results []instrument `json:"results"`
	}
	var ae apiError
	resp, err := req.SetQueryParam("symbol", symbol).SetResult(&out).SetError(&ae).Get("/instruments/")
	if err != nil {
		return instrument{}, fmt.Errorf("instrument lookup: %w", err)
	}
	if resp.IsError() {
		return instrument{}, fmt.Errorf("instrument lookup: %s", ae.message(resp.StatusCode()))
	}
	if len(out.Results) == 0 {
		return instrument{}, fmt.Errorf("instrument %q not found", symbol)
	}

	in = out.Results[0]
	c.mu.Lock()
	c.instruments[symbol] = in
	c.mu.Unlock()
	return in, nil
}

type orderReq struct {
	Account     string `json:"account"`
	Instrument  string `json:"instrument"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
	Trigger     string `json:"trigger"`
	Quantity    string `json:"quantity"`
	Side        string `json:"side"`
	RefID       string `json:"ref_id"`
}

type orderResp struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	AveragePrice string `json:"average_price"`
	CreatedAt    string `json:"created_at"`
}

// PlaceOrder submits a good-for-day market order. Every failure, including
// not being logged in, comes back as a *broker.OrderError.
func (c *Client) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	if err := req.Validate(); err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}
	symbol := strings.ToUpper(req.Ticker)

	in, err := c.instrument(ctx, symbol)
	if err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}

	c.mu.Lock()
	acct := c.accountURL
	c.mu.Unlock()

	r, err := c.authed(ctx)
	if err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}

	body := orderReq{
		Account:     acct,
		Instrument:  in.URL,
		Symbol:      symbol,
		Type:        "market",
		TimeInForce: "gfd",
		Trigger:     "immediate",
		Quantity:    strconv.FormatFloat(req.Quantity, 'f', -1, 64),
		Side:        strings.ToLower(string(req.Side)),
		RefID:       uuid.NewString(),
	}

	var out orderResp
	var ae apiError
	resp, err := r.SetBody(body).SetResult(&out).SetError(&ae).Post("/orders/")
	if err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}
	if resp.IsError() {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, errors.New(ae.message(resp.StatusCode())))
	}

	fill := broker.OrderFill{
		OrderID:  out.ID,
		Ticker:   symbol,
		Quantity: req.Quantity,
		Side:     req.Side,
		State:    out.State,
		Time:     time.Now(),
	}
	if px, err := strconv.ParseFloat(out.AveragePrice, 64); err == nil {
		fill.Price = px
	}
	if t, err := time.Parse(time.RFC3339Nano, out.CreatedAt); err == nil {
		fill.Time = t
	}
	return fill, nil
}
