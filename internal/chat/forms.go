// internal/chat/forms.go
package chat

import (
	"context"
	"errors"
	"fmt"

	"librabot/internal/auth"
	"librabot/internal/form"
)

// Form kinds driven by the dispatcher.
const (
	FormLogin        = "login"
	FormAddMember    = "add_member"
	FormAddBook      = "add_book"
	FormBorrowBook   = "borrow_book"
	FormReturnBook   = "return_book"
	FormSearchTitle  = "search_title"
	FormSearchAuthor = "search_author"
)

const (
	promptUsername = "Enter your username:"
	promptPassword = "Enter your password:"
	promptBookID   = "Enter the book ID:"
	promptMemberID = "Enter the member ID:"

	replyLoginOK     = "Login successful!"
	replyLoginFailed = "Invalid username or password."
	replyRateLimited = "Too many login attempts. Please wait a minute and try again."
)

func (e *Engine) registerForms() {
	e.forms.Register(&form.Definition{
		Kind: FormLogin,
		Steps: []form.Step{
			{Field: "username", Prompt: promptUsername, Validate: form.Text()},
			{Field: "password", Prompt: promptPassword, Validate: form.Text()},
		},
		Commit: e.commitLogin,
	})

	e.forms.Register(&form.Definition{
		Kind: FormAddMember,
		Steps: []form.Step{
			{
				Field:    "full_name",
				Prompt:   "Enter the new member's full name:",
				Validate: form.NonEmpty(2, "That name is not valid. It must be at least 2 characters."),
			},
			{
				Field:    "phone",
				Prompt:   `Enter the member's phone number (optional, "-" to skip):`,
				Validate: form.OptionalText(),
			},
			{
				Field:    "email",
				Prompt:   `Enter the member's email (optional, "-" to skip):`,
				Validate: form.OptionalText(),
			},
			{
				Field:    "address",
				Prompt:   `Enter the member's address (optional, "-" to skip):`,
				Validate: form.OptionalText(),
			},
		},
		Commit: e.commitAddMember,
	})

	e.forms.Register(&form.Definition{
		Kind: FormAddBook,
		Steps: []form.Step{
			{
				Field:    "title",
				Prompt:   "Enter the book title:",
				Validate: form.NonEmpty(2, "That title is not valid. It must be at least 2 characters."),
			},
			{
				Field:    "author",
				Prompt:   "Enter the author's name:",
				Validate: form.NonEmpty(2, "That author name is not valid. It must be at least 2 characters."),
			},
			{
				Field:    "isbn",
				Prompt:   `Enter the ISBN (optional, "-" to skip):`,
				Validate: form.OptionalText(),
			},
			{
				Field:    "copies",
				Prompt:   "How many copies? (default: 1)",
				Validate: form.IntOrDefault(1, 1),
			},
			{
				Field:    "year",
				Prompt:   "Enter the publication year (optional):",
				Validate: form.OptionalYear(),
			},
		},
		Commit: e.commitAddBook,
	})

	e.forms.Register(&form.Definition{
		Kind: FormBorrowBook,
		Steps: []form.Step{
			{Field: "book_id", Prompt: promptBookID, Validate: form.ID("The book ID must be a number.")},
			{Field: "member_id", Prompt: promptMemberID, Validate: form.ID("The member ID must be a number.")},
			{
				Field:    "days",
				Prompt:   fmt.Sprintf("For how many days? (default: %d)", e.loanDays),
				Validate: form.IntOrDefault(e.loanDays, 1),
			},
		},
		Commit: e.commitBorrow,
	})

	e.forms.Register(&form.Definition{
		Kind: FormReturnBook,
		Steps: []form.Step{
			{Field: "book_id", Prompt: promptBookID, Validate: form.ID("The book ID must be a number.")},
		},
		Commit: e.commitReturn,
	})

	e.forms.Register(&form.Definition{
		Kind: FormSearchTitle,
		Steps: []form.Step{
			{Field: "keyword", Prompt: "Enter part of the book title:", Validate: form.Text()},
		},
		Commit: e.commitSearchTitle,
	})

	e.forms.Register(&form.Definition{
		Kind: FormSearchAuthor,
		Steps: []form.Step{
			{Field: "keyword", Prompt: "Enter the author's name:", Validate: form.Text()},
		},
		Commit: e.commitSearchAuthor,
	})
}

func (e *Engine) commitLogin(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	username, _ := fields["username"].(string)
	password, _ := fields["password"].(string)

	ok, err := e.verifier.Verify(username, password)
	if errors.Is(err, auth.ErrRateLimited) {
		return replyRateLimited, nil
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return replyLoginFailed, nil
	}

	e.sessions.SetAuthenticated(chatID, true)
	return replyLoginOK, nil
}

func (e *Engine) commitAddMember(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	member, err := e.library.AddMember(ctx,
		fields["full_name"].(string),
		fields["phone"].(string),
		fields["email"].(string),
		fields["address"].(string),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("New member registered!\nMember ID: %d", member.ID), nil
}

func (e *Engine) commitAddBook(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	book, err := e.library.AddBook(ctx,
		fields["title"].(string),
		fields["author"].(string),
		fields["isbn"].(string),
		fields["copies"].(int),
		fields["year"].(int),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("New book registered!\nBook ID: %d", book.ID), nil
}

func (e *Engine) commitBorrow(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	receipt, err := e.library.Borrow(ctx,
		fields["book_id"].(int64),
		fields["member_id"].(int64),
		fields["days"].(int),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Lent %q to %s.\nDue back: %s",
		receipt.BookTitle, receipt.MemberName, receipt.DueDate.Format("2006-01-02")), nil
}

func (e *Engine) commitReturn(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	receipt, err := e.library.Return(ctx, fields["book_id"].(int64))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Took %q back from %s.", receipt.BookTitle, receipt.MemberName), nil
}

func (e *Engine) commitSearchTitle(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	keyword := fields["keyword"].(string)
	books, err := e.library.SearchByTitle(ctx, keyword)
	if err != nil {
		return "", err
	}
	if len(books) == 0 {
		return fmt.Sprintf("No books matched %q.", keyword), nil
	}
	return formatSearchResults(keyword, books), nil
}

func (e *Engine) commitSearchAuthor(ctx context.Context, chatID int64, fields map[string]any) (string, error) {
	keyword := fields["keyword"].(string)
	books, err := e.library.SearchByAuthor(ctx, keyword)
	if err != nil {
		return "", err
	}
	if len(books) == 0 {
		return fmt.Sprintf("No books by authors matching %q were found.", keyword), nil
	}
	return formatSearchResults(keyword, books), nil
}
