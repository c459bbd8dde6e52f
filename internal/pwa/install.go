// Package pwa models the "install app" flow: a deferred native prompt when
// the host offers one, manual per-browser instructions otherwise.
package pwa

import (
	"context"
	"errors"
	"strings"
	"sync"

	"imagecraft/internal/i18n"
)

// ErrNoPrompt is returned by a Prompter with nothing deferred.
var ErrNoPrompt = errors.New("pwa: no install prompt available")

// Outcome is the user's answer to an install prompt.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDismissed Outcome = "dismissed"
	OutcomeManual    Outcome = "manual"
	OutcomeInstalled Outcome = "installed"
)

// Prompter is the host's install capability. OnInstallable registers a
// callback fired when a native prompt becomes available.
type Prompter interface {
	OnInstallable(func())
	PromptInstall(ctx context.Context) (Outcome, error)
}

// Result is what the install button reports back to the caller.
type Result struct {
	Outcome      Outcome `json:"outcome"`
	Instructions string  `json:"instructions,omitempty"`
}

// Installer drives one client's install button.
type Installer struct {
	prompter  Prompter
	userAgent string
	lang      i18n.Lang

	mu        sync.Mutex
	deferred  bool
	installed bool
}

func NewInstaller(p Prompter, userAgent string, lang i18n.Lang) *Installer {
	in := &Installer{prompter: p, userAgent: userAgent, lang: lang}
	if p != nil {
		p.OnInstallable(func() {
			in.mu.Lock()
			in.deferred = true
			in.mu.Unlock()
		})
	}
	return in
}

// MarkInstalled records that the app runs standalone already.
func (in *Installer) MarkInstalled() {
	in.mu.Lock()
	in.installed = true
	in.deferred = false
	in.mu.Unlock()
}

// Visible reports whether the install button should be shown.
func (in *Installer) Visible() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return !in.installed
}

// Install uses the deferred prompt once if there is one and falls back to
// manual instructions.
func (in *Installer) Install(ctx context.Context) (Result, error) {
	in.mu.Lock()
	if in.installed {
		in.mu.Unlock()
		return Result{Outcome: OutcomeInstalled}, nil
	}
	deferred := in.deferred
	in.deferred = false
	in.mu.Unlock()

	if deferred && in.prompter != nil {
		outcome, err := in.prompter.PromptInstall(ctx)
		switch {
		case err == nil:
			if outcome == OutcomeAccepted {
				in.MarkInstalled()
			}
			return Result{Outcome: outcome}, nil
		case !errors.Is(err, ErrNoPrompt):
			return Result{}, err
		}
	}
	return Result{Outcome: OutcomeManual, Instructions: ManualHint(in.userAgent, in.lang)}, nil
}

// ManualPrompter never has a native prompt; servers use it so Install always
// yields manual instructions.
type ManualPrompter struct{}

func (ManualPrompter) OnInstallable(func()) {}

func (ManualPrompter) PromptInstall(context.Context) (Outcome, error) {
	return "", ErrNoPrompt
}

type browser int

const (
	browserOther browser = iota
	browserChrome
	browserSafari
	browserFirefox
)

func detectBrowser(userAgent string) browser {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		return browserChrome
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		return browserSafari
	case strings.Contains(ua, "firefox"):
		return browserFirefox
	}
	return browserOther
}

var hints = map[i18n.Lang]map[browser]string{
	i18n.Arabic: {
		browserChrome:  `في متصفح Chrome: اضغط على القائمة (⋮) ← "تثبيت التطبيق"`,
		browserSafari:  `في متصفح Safari: اضغط على زر المشاركة ← "إضافة إلى الشاشة الرئيسية"`,
		browserFirefox: `في متصفح Firefox: اضغط على القائمة ← "تثبيت"`,
		browserOther:   `يمكنك تثبيت التطبيق من قائمة المتصفح`,
	},
	i18n.English: {
		browserChrome:  `In Chrome: open the menu (⋮) → "Install app"`,
		browserSafari:  `In Safari: tap the Share button → "Add to Home Screen"`,
		browserFirefox: `In Firefox: open the menu → "Install"`,
		browserOther:   `You can install the app from your browser menu`,
	},
}

// ManualHint returns install instructions for the browser in userAgent.
func ManualHint(userAgent string, lang i18n.Lang) string {
	byBrowser, ok := hints[lang]
	if !ok {
		byBrowser = hints[i18n.Arabic]
	}
	return byBrowser[detectBrowser(userAgent)]
}
