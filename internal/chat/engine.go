// internal/chat/engine.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"librabot/internal/auth"
	"librabot/internal/form"
	"librabot/internal/library"
	"librabot/internal/session"
)

const (
	greetingText  = "Welcome to the library management system!\nPlease log in to continue."
	welcomeText   = "Library management system.\nPlease choose one of the options below:"
	loginGateText = "Please log in first."
	storeFailText = "Something went wrong while talking to the database. Please try again."
)

// Engine dispatches inbound messages to queries, forms and the loan
// lifecycle, gated by the session's authentication flag.
type Engine struct {
	sessions session.Store
	forms    *form.Engine
	library  library.Service
	verifier *auth.Verifier
	loanDays int
	log      *zap.Logger
}

// NewEngine wires the dispatcher and registers all form definitions.
func NewEngine(sessions session.Store, forms *form.Engine, lib library.Service, verifier *auth.Verifier, loanDays int, log *zap.Logger) *Engine {
	if loanDays < 1 {
		loanDays = library.DefaultLoanDays
	}
	e := &Engine{
		sessions: sessions,
		forms:    forms,
		library:  lib,
		verifier: verifier,
		loanDays: loanDays,
		log:      log,
	}
	e.registerForms()
	return e
}

// Handle processes one inbound message and returns the replies to
// send. Recognized commands take precedence over a pending form; a
// form-initiating command discards any stale pending form.
func (e *Engine) Handle(ctx context.Context, chatID int64, text string) []Reply {
	text = strings.TrimSpace(text)
	messagesTotal.Inc()
	if isCommand(text) {
		commandsTotal.WithLabelValues(text).Inc()
	}

	switch text {
	case CmdStart, CmdLogin:
		if e.sessions.IsAuthenticated(chatID) {
			return []Reply{{Text: welcomeText, Menu: MenuMain}}
		}
		return []Reply{{Text: greetingText, Menu: MenuLogin}}

	case BtnLogIn:
		return e.startForm(chatID, FormLogin, MenuRemove)

	case CmdMenu, CmdHelp, BtnBackToMain:
		return e.gated(chatID, func() []Reply {
			return []Reply{{Text: welcomeText, Menu: MenuMain}}
		})

	case BtnLogOut:
		return e.gated(chatID, func() []Reply {
			e.sessions.SetAuthenticated(chatID, false)
			return []Reply{{Text: "You have been logged out.", Menu: MenuLogin}}
		})

	case BtnListBooks:
		return e.gated(chatID, func() []Reply { return e.listBooks(ctx) })

	case BtnListMembers:
		return e.gated(chatID, func() []Reply { return e.listMembers(ctx) })

	case BtnBorrowed:
		return e.gated(chatID, func() []Reply { return e.listOutstanding(ctx) })

	case BtnSearchBooks:
		return e.gated(chatID, func() []Reply {
			return []Reply{{Text: "Choose a search type:", Menu: MenuSearch}}
		})

	case BtnAddBook:
		return e.gatedForm(chatID, FormAddBook)
	case BtnAddMember:
		return e.gatedForm(chatID, FormAddMember)
	case BtnLendBook:
		return e.gatedForm(chatID, FormBorrowBook)
	case BtnReturnBook:
		return e.gatedForm(chatID, FormReturnBook)
	case BtnSearchTitle:
		return e.gatedForm(chatID, FormSearchTitle)
	case BtnSearchAuthor:
		return e.gatedForm(chatID, FormSearchAuthor)
	}

	if _, ok := e.sessions.PendingForm(chatID); ok {
		return e.advanceForm(ctx, chatID, text)
	}

	if e.sessions.IsAuthenticated(chatID) {
		return []Reply{{Text: "I didn't recognize that. Send " + CmdMenu + " to see the available options."}}
	}
	return []Reply{{Text: "Send " + CmdStart + " to begin."}}
}

// gated runs fn only for authenticated sessions; everyone else is
// sent into the login flow instead of the requested action.
func (e *Engine) gated(chatID int64, fn func() []Reply) []Reply {
	if !e.sessions.IsAuthenticated(chatID) {
		replies := []Reply{{Text: loginGateText}}
		return append(replies, e.startForm(chatID, FormLogin, MenuRemove)...)
	}
	return fn()
}

func (e *Engine) gatedForm(chatID int64, kind string) []Reply {
	return e.gated(chatID, func() []Reply {
		return e.startForm(chatID, kind, MenuNone)
	})
}

func (e *Engine) startForm(chatID int64, kind string, menu Menu) []Reply {
	prompt, err := e.forms.Start(chatID, kind)
	if err != nil {
		e.log.Error("start form", zap.String("form", kind), zap.Error(err))
		return []Reply{{Text: storeFailText}}
	}
	return []Reply{{Text: prompt, Menu: menu}}
}

func (e *Engine) advanceForm(ctx context.Context, chatID int64, text string) []Reply {
	res, err := e.forms.Advance(ctx, chatID, text)
	if err != nil {
		if errors.Is(err, form.ErrNoActiveForm) {
			return []Reply{{Text: "Send " + CmdMenu + " to see the available options."}}
		}
		e.log.Warn("form failed",
			zap.Int64("chat_id", chatID),
			zap.String("form", res.Kind),
			zap.Error(err))
		return []Reply{{Text: errorReply(err)}}
	}

	replies := []Reply{{Text: res.Reply}}
	if res.Done && res.Kind == FormLogin {
		if e.sessions.IsAuthenticated(chatID) {
			replies = append(replies, Reply{Text: welcomeText, Menu: MenuMain})
		} else {
			// Failed login re-enters the flow from the username prompt.
			replies = append(replies, e.startForm(chatID, FormLogin, MenuRemove)...)
		}
	}
	return replies
}

func (e *Engine) listBooks(ctx context.Context) []Reply {
	books, err := e.library.ListBooks(ctx)
	if err != nil {
		e.log.Error("list books", zap.Error(err))
		return []Reply{{Text: storeFailText}}
	}
	if len(books) == 0 {
		return []Reply{{Text: "No books are registered yet."}}
	}
	return []Reply{{Text: formatBooks(books)}}
}

func (e *Engine) listMembers(ctx context.Context) []Reply {
	members, err := e.library.ListMembers(ctx)
	if err != nil {
		e.log.Error("list members", zap.Error(err))
		return []Reply{{Text: storeFailText}}
	}
	if len(members) == 0 {
		return []Reply{{Text: "No members are registered yet."}}
	}
	return []Reply{{Text: formatMembers(members)}}
}

func (e *Engine) listOutstanding(ctx context.Context) []Reply {
	loans, err := e.library.ListOutstanding(ctx)
	if err != nil {
		e.log.Error("list outstanding loans", zap.Error(err))
		return []Reply{{Text: storeFailText}}
	}
	if len(loans) == 0 {
		return []Reply{{Text: "No books are currently on loan."}}
	}
	return []Reply{{Text: formatLoans(loans)}}
}

// errorReply maps a failed operation onto its user-facing message.
func errorReply(err error) string {
	var unavailable *library.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return fmt.Sprintf("%q is not available right now.", unavailable.Title)
	case errors.Is(err, library.ErrBookNotFound):
		return "No book with that ID was found."
	case errors.Is(err, library.ErrMemberNotFound):
		return "No member with that ID was found, or the member is inactive."
	case errors.Is(err, library.ErrNoActiveLoan):
		return "No active loan was found for that book."
	default:
		return storeFailText
	}
}

var commandSet = map[string]struct{}{
	CmdStart: {}, CmdLogin: {}, CmdMenu: {}, CmdHelp: {},
	BtnLogIn: {}, BtnListBooks: {}, BtnListMembers: {}, BtnAddBook: {},
	BtnAddMember: {}, BtnLendBook: {}, BtnReturnBook: {}, BtnSearchBooks: {},
	BtnBorrowed: {}, BtnLogOut: {}, BtnSearchTitle: {}, BtnSearchAuthor: {},
	BtnBackToMain: {},
}

func isCommand(text string) bool {
	_, ok := commandSet[text]
	return ok
}
