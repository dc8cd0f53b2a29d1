// internal/chat/commands.go
package chat

// Slash commands and button labels recognized by the dispatcher. The
// button labels double as the reply-keyboard captions.
const (
	CmdStart = "/start"
	CmdLogin = "/login"
	CmdMenu  = "/menu"
	CmdHelp  = "/help"

	BtnLogIn        = "Log In"
	BtnListBooks    = "List Books"
	BtnListMembers  = "List Members"
	BtnAddBook      = "Add Book"
	BtnAddMember    = "Add Member"
	BtnLendBook     = "Lend Book"
	BtnReturnBook   = "Return Book"
	BtnSearchBooks  = "Search Books"
	BtnBorrowed     = "Borrowed Books"
	BtnLogOut       = "Log Out"
	BtnSearchTitle  = "Search by Title"
	BtnSearchAuthor = "Search by Author"
	BtnBackToMain   = "Back to Main Menu"
)

// Menu selects the reply keyboard to attach to an outbound message.
type Menu int

const (
	// MenuNone leaves the current keyboard in place.
	MenuNone Menu = iota
	// MenuRemove takes the keyboard away, for free-text prompts.
	MenuRemove
	// MenuLogin shows the single Log In button.
	MenuLogin
	// MenuMain shows the main menu.
	MenuMain
	// MenuSearch shows the search submenu.
	MenuSearch
)

// Reply is one outbound message produced by the dispatcher.
type Reply struct {
	Text string
	Menu Menu
}

// MainMenuRows is the main menu keyboard layout, two buttons per row.
var MainMenuRows = [][]string{
	{BtnListBooks, BtnListMembers},
	{BtnAddBook, BtnAddMember},
	{BtnLendBook, BtnReturnBook},
	{BtnSearchBooks, BtnBorrowed},
	{BtnLogOut},
}

// SearchMenuRows is the search submenu keyboard layout.
var SearchMenuRows = [][]string{
	{BtnSearchTitle, BtnSearchAuthor},
	{BtnBackToMain},
}

// LoginMenuRows is the pre-login keyboard layout.
var LoginMenuRows = [][]string{
	{BtnLogIn},
}
