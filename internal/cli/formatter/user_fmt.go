package formatter

import (
	"fmt"
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
)

// FormatUser renders the profile card.
func FormatUser(u domain.User) string {
	var b strings.Builder
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	fmt.Fprintf(&b, "%s\n", Bold(name))
	fmt.Fprintf(&b, "Username  %s\n", u.Username)
	fmt.Fprintf(&b, "Email     %s\n", u.Email)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Member    since %s\n", u.CreatedAt.Format("Jan 2, 2006"))
	}
	return RenderBox("Profile", strings.TrimRight(b.String(), "\n"))
}
