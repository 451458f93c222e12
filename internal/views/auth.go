// ABOUTME: Registration and login screens
// ABOUTME: Registration validates locally and never signs the user in

package views

import (
	"context"
	"sync"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/model"
)

// Messages shown by the auth screens.
const (
	MsgRegistered       = "Registration successful! You can now login."
	MsgRegisterFailed   = "Registration failed"
	MsgLoginFailed      = "Login failed"
	msgLoginWelcomeBack = "Welcome back, %s!"
)

// Register is the sign-up form.
type Register struct {
	env Env
	req *inflight

	mu      sync.Mutex
	err     string
	success string
}

// NewRegister creates the sign-up view.
func NewRegister(env Env) *Register {
	return &Register{env: env.withDefaults(), req: newInflight()}
}

// Submit validates u and creates the account.
func (v *Register) Submit(ctx context.Context, u model.NewUser) error {
	v.mu.Lock()
	v.err, v.success = "", ""
	v.mu.Unlock()

	if err := u.Validate(); err != nil {
		v.setResult(err.Error(), "")
		v.Render()
		return err
	}

	ctx, cancel := v.req.op(ctx)
	defer cancel()
	_, err := v.env.Session.Register(ctx, u)
	if !v.req.open() {
		return ErrSuperseded
	}
	if err != nil {
		v.env.Logger.Debug("register failed", "error", err)
		v.setResult(api.UserMessage(err, MsgRegisterFailed), "")
		v.Render()
		return err
	}
	v.setResult("", MsgRegistered)
	v.Render()
	return nil
}

// Error returns the current error text.
func (v *Register) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Success returns the current success text.
func (v *Register) Success() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.success
}

// Render prints the form's outcome.
func (v *Register) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()
	printStatus(v.env.Out, v.err, v.success)
}

// Close discards any in-flight request.
func (v *Register) Close() {
	v.req.close()
}

func (v *Register) setResult(errMsg, success string) {
	v.mu.Lock()
	v.err, v.success = errMsg, success
	v.mu.Unlock()
}

// Login is the sign-in form.
type Login struct {
	env Env
	req *inflight

	mu  sync.Mutex
	err string
}

// NewLogin creates the sign-in view.
func NewLogin(env Env) *Login {
	return &Login{env: env.withDefaults(), req: newInflight()}
}

// Submit signs in through the session.
func (v *Login) Submit(ctx context.Context, email, password string) error {
	ctx, cancel := v.req.op(ctx)
	defer cancel()

	u, err := v.env.Session.Login(ctx, email, password)
	if !v.req.open() {
		return ErrSuperseded
	}

	v.mu.Lock()
	if err != nil {
		v.err = api.UserMessage(err, MsgLoginFailed)
	} else {
		v.err = ""
	}
	msg := v.err
	v.mu.Unlock()

	if err != nil {
		v.env.Logger.Debug("login failed", "error", err)
		printStatus(v.env.Out, msg, "")
		return err
	}
	successColor.Fprintf(v.env.Out, "  "+msgLoginWelcomeBack+"\n", u.FullName)
	return nil
}

// Error returns the last failure text.
func (v *Login) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Close discards any in-flight request.
func (v *Login) Close() {
	v.req.close()
}
