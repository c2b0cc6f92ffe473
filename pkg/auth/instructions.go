package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAPIKeyGuide writes instructions for obtaining a bearer token
func ShowAPIKeyGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "API KEY")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "threadgrab reads posts through the v1.1 status lookup and needs an")
	fmt.Fprintln(w, "app-only bearer token.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Open the developer portal and select (or create) a project app")
	fmt.Fprintln(w, "  2. Under 'Keys and tokens', generate the Bearer Token")
	fmt.Fprintln(w, "  3. Paste it below, or export THREADGRAB_API_KEY for a single shell")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The token is kept in the system keyring when one is available and in")
	fmt.Fprintln(w, "an encrypted file under the config directory otherwise.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
}
