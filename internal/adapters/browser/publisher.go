// Package browser drives note.com through Chrome. note.com has no public
// write API, so posts are created the way a person would: log in, open the
// editor, type, publish. The pipeline only sees the Login/SubmitPost
// contract; every selector and wait lives here.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/secondary"
)

const (
	loginURL   = "https://note.com/login"
	newNoteURL = "https://note.com/notes/new"
	homeURL    = "https://note.com/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// NotePublisher implements secondary.Publisher with chromedp.
type NotePublisher struct {
	headless      bool
	actionTimeout time.Duration
	pageTimeout   time.Duration
	logger        *log.Logger
}

// NewNotePublisher creates a note.com publisher.
func NewNotePublisher(pub config.PublishConfig, timeouts config.TimeoutConfig, logger *log.Logger) *NotePublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &NotePublisher{
		headless:      pub.Headless,
		actionTimeout: time.Duration(timeouts.BrowserActionSeconds) * time.Second,
		pageTimeout:   time.Duration(timeouts.BrowserPageSeconds) * time.Second,
		logger:        logger,
	}
}

// noteSession is one authenticated browser context. Each account gets its
// own Chrome profile directory, so cookies never leak between accounts.
type noteSession struct {
	account string
	ctx     context.Context
	cancels []context.CancelFunc
}

func (s *noteSession) Account() string { return s.account }

func (s *noteSession) Close() error {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	return nil
}

// Login starts an isolated browser context and authenticates the account.
func (p *NotePublisher) Login(ctx context.Context, cred secondary.AccountCredential) (secondary.Session, error) {
	profileDir, err := os.MkdirTemp("", "autonote-profile-*")
	if err != nil {
		return nil, p.publishErr(cred.Label, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.headless),
		chromedp.UserAgent(userAgent),
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(1280, 800),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	session := &noteSession{
		account: cred.Label,
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelBrowser},
	}

	p.logger.Printf("[browser] logging in account=%s email=%s", cred.Label, config.MaskEmail(cred.Email))

	loginCtx, cancel := context.WithTimeout(browserCtx, p.pageTimeout)
	defer cancel()

	err = chromedp.Run(loginCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`input[name="login"], input[type="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="login"], input[type="email"]`, cred.Email, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, cred.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		// Timeouts and navigation failures are transient; only a rejected
		// credential is an auth failure.
		session.Close()
		return nil, p.publishErr(cred.Label, err)
	}

	// Still sitting on the login page means the credentials were rejected.
	var location string
	checkCtx, cancelCheck := context.WithTimeout(browserCtx, p.actionTimeout)
	defer cancelCheck()
	if err := chromedp.Run(checkCtx, chromedp.Location(&location)); err != nil {
		session.Close()
		return nil, p.publishErr(cred.Label, err)
	}
	if strings.Contains(location, "/login") {
		session.Close()
		return nil, &run.AuthError{Account: cred.Label, Cause: errors.New("credentials rejected")}
	}

	p.logger.Printf("[browser] login ok account=%s", cred.Label)
	return session, nil
}

// SubmitPost opens the editor in the session and creates the post.
func (p *NotePublisher) SubmitPost(ctx context.Context, session secondary.Session, draft article.Draft, thumbnailPath string, opts secondary.PublishOptions) (string, error) {
	s, ok := session.(*noteSession)
	if !ok {
		return "", &run.PublishError{Account: session.Account(), Cause: errors.New("session does not belong to this publisher")}
	}

	account := s.account
	pageCtx, cancel := context.WithTimeout(s.ctx, p.pageTimeout)
	defer cancel()

	err := chromedp.Run(pageCtx,
		chromedp.Navigate(newNoteURL),
		chromedp.WaitVisible(`textarea[placeholder*="タイトル"], textarea`, chromedp.ByQuery),
		chromedp.SendKeys(`textarea[placeholder*="タイトル"], textarea`, draft.Title, chromedp.ByQuery),
		chromedp.Click(`div[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.SendKeys(`div[contenteditable="true"]`, draft.Body, chromedp.ByQuery),
	)
	if err != nil {
		return "", p.publishErr(account, err)
	}

	if thumbnailPath != "" {
		if err := p.attachThumbnail(s, thumbnailPath); err != nil {
			// A missing cover is not worth failing the whole post.
			p.logger.Printf("[browser] thumbnail attach failed account=%s: %v", account, err)
		}
	}

	if opts.AsDraft {
		return "", p.saveDraft(s)
	}

	return p.publish(s, draft.Hashtags, opts)
}

func (p *NotePublisher) attachThumbnail(s *noteSession, path string) error {
	ctx, cancel := context.WithTimeout(s.ctx, p.actionTimeout)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Click(`button[aria-label*="画像"], [class*="thumbnail"] button`, chromedp.ByQuery),
		chromedp.SetUploadFiles(`input[type="file"]`, []string{path}, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`button:not([disabled])[class*="save"], button[class*="Save"]`, chromedp.ByQuery),
	)
}

func (p *NotePublisher) saveDraft(s *noteSession) error {
	ctx, cancel := context.WithTimeout(s.ctx, p.actionTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Click(`button[class*="draft"], [class*="Draft"] button`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return p.publishErr(s.account, err)
	}
	p.logger.Printf("[browser] draft saved account=%s", s.account)
	return nil
}

func (p *NotePublisher) publish(s *noteSession, hashtags []string, opts secondary.PublishOptions) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, p.pageTimeout)
	defer cancel()

	// First click opens the publish settings pane with the tag editor.
	if err := chromedp.Run(ctx,
		chromedp.Click(`button[class*="publish"], button[class*="Publish"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[placeholder*="ハッシュタグ"], [class*="tag"] input`, chromedp.ByQuery),
	); err != nil {
		return "", p.publishErr(s.account, err)
	}

	for _, tag := range hashtags {
		if err := chromedp.Run(ctx,
			chromedp.SendKeys(`input[placeholder*="ハッシュタグ"], [class*="tag"] input`, "#"+tag+"\n", chromedp.ByQuery),
		); err != nil {
			p.logger.Printf("[browser] tag entry failed account=%s tag=%s: %v", s.account, tag, err)
			break
		}
	}

	if opts.PaidArticle {
		if err := p.setPaidOptions(s, opts); err != nil {
			// Identity verification may block paid settings; post free instead.
			p.logger.Printf("[browser] paid settings skipped account=%s: %v", s.account, err)
		}
	}

	var location string
	err := chromedp.Run(ctx,
		chromedp.Click(`button[type="submit"], button[class*="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
		chromedp.Location(&location),
	)
	if err != nil {
		return "", p.publishErr(s.account, err)
	}

	if strings.Contains(location, "/publish") || strings.Contains(location, "/notes/new") {
		return "", &run.PublishError{Account: s.account, Cause: fmt.Errorf("page did not leave the editor (url=%s)", location)}
	}

	p.logger.Printf("[browser] published account=%s url=%s", s.account, location)
	return location, nil
}

func (p *NotePublisher) setPaidOptions(s *noteSession, opts secondary.PublishOptions) error {
	ctx, cancel := context.WithTimeout(s.ctx, p.actionTimeout)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Click(`label[class*="paid"], input[name*="price"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="number"]`, fmt.Sprintf("%d", opts.PriceYen), chromedp.ByQuery),
	)
}

// publishErr wraps a chromedp failure, marking timeouts and navigation
// failures as transient so the dispatcher retries them once.
func (p *NotePublisher) publishErr(account string, err error) error {
	transient := errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "net::") ||
		strings.Contains(err.Error(), "navigation")
	return &run.PublishError{Account: account, Cause: err, Transient: transient}
}
