package respond

import "regexp"

// redactions run in order; the Anthropic pattern must precede the generic
// sk- one.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`), "AIza****"},
	{regexp.MustCompile(`([?&](?:key|api_key|apiKey)=)[^&\s"]+`), "${1}****"},
	{regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`), "://$1:****@"},
}

// SanitizeError returns err's message with API keys, key query parameters
// and URL passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	return msg
}
