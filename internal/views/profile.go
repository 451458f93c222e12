// ABOUTME: Profile screen for the signed-in user
// ABOUTME: Loads, renders with placeholders, and saves edits to name, phone, location and bio

package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/model"
)

// Profile messages.
const (
	MsgProfileLoadFailed   = "Failed to load profile"
	MsgProfileUpdateFailed = "Failed to update profile"
	MsgProfileUpdated      = "Profile updated successfully!"
)

// Profile shows and edits the signed-in user's profile.
type Profile struct {
	env   Env
	req   *inflight
	flash *Flash

	mu      sync.Mutex
	profile *model.User
	form    model.ProfileUpdate
	loading bool
	err     string
}

// NewProfile creates the profile view.
func NewProfile(env Env) *Profile {
	env = env.withDefaults()
	return &Profile{env: env, req: newInflight(), flash: NewFlash(env.Now, env.FlashDelay)}
}

// Load fetches the profile and renders it.
func (v *Profile) Load(ctx context.Context) error {
	user := v.env.Session.User()
	if user == nil {
		return v.env.deny(DenyProfile)
	}

	ctx, seq, cancel := v.req.load(ctx)
	defer cancel()
	v.setLoading(true)

	p, err := v.env.API.GetProfile(ctx, user.ID)
	if !v.req.current(seq) {
		return ErrSuperseded
	}

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.err = MsgProfileLoadFailed
	} else {
		v.err = ""
		v.profile = p
		v.form = model.ProfileUpdateFrom(*p)
	}
	v.mu.Unlock()

	if err != nil {
		v.env.Logger.Debug("loading profile", "error", err)
	}
	v.Render()
	return err
}

// Form returns the edit form, seeded from the last loaded profile.
func (v *Profile) Form() model.ProfileUpdate {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// SetForm replaces the edit form.
func (v *Profile) SetForm(p model.ProfileUpdate) {
	v.mu.Lock()
	v.form = p
	v.mu.Unlock()
}

// Save submits the edit form.
func (v *Profile) Save(ctx context.Context) error {
	user := v.env.Session.User()
	if user == nil {
		return v.env.deny(DenyProfile)
	}

	form := v.Form()
	if err := form.Validate(); err != nil {
		v.setError(err.Error())
		v.Render()
		return err
	}

	ctx, cancel := v.req.op(ctx)
	defer cancel()
	updated, err := v.env.API.UpdateProfile(ctx, user.ID, form)
	if !v.req.open() {
		return ErrSuperseded
	}

	if err != nil {
		v.env.Logger.Debug("updating profile", "error", err)
		v.setError(api.UserMessage(err, MsgProfileUpdateFailed))
		v.Render()
		return err
	}

	v.mu.Lock()
	v.err = ""
	v.profile = updated
	v.form = model.ProfileUpdateFrom(*updated)
	v.mu.Unlock()
	v.flash.Show(MsgProfileUpdated)
	v.Render()
	return nil
}

// Current returns the last loaded profile, or nil.
func (v *Profile) Current() *model.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.profile == nil {
		return nil
	}
	p := *v.profile
	return &p
}

// Error returns the current error text.
func (v *Profile) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Flash returns the visible success message.
func (v *Profile) Flash() string {
	return v.flash.Message()
}

// Render prints the profile.
func (v *Profile) Render() {
	flash := v.flash.Message()
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.env.Out
	printHeader(w, "Profile")
	if v.loading {
		fmt.Fprintln(w, "  Loading...")
		return
	}
	printStatus(w, v.err, flash)
	if v.profile == nil {
		return
	}

	p := v.profile
	printField(w, "Name", p.FullName)
	printField(w, "Email", p.Email)
	printField(w, "Account", string(p.UserType))
	printField(w, "Phone", orPlaceholder(p.Phone, NotProvided))
	printField(w, "Location", orPlaceholder(p.Location, NotProvided))
	if p.Bio == "" {
		printField(w, "Bio", NoBio)
	} else {
		printBlock(w, "Bio", Markdown(p.Bio))
	}
	if !p.CreatedAt.IsZero() {
		printField(w, "Member since", formatDate(p.CreatedAt))
	}
}

// Close cancels outstanding requests.
func (v *Profile) Close() {
	v.req.close()
}

func (v *Profile) setLoading(b bool) {
	v.mu.Lock()
	v.loading = b
	v.mu.Unlock()
}

func (v *Profile) setError(msg string) {
	v.mu.Lock()
	v.err = msg
	v.mu.Unlock()
}
