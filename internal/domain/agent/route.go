package agent

import "regexp"

// routeRule maps a prompt pattern to a persona name.
type routeRule struct {
	pattern *regexp.Regexp
	agent   string
	reason  string
}

// routeRules are checked in order; the first match wins.
var routeRules = []routeRule{
	{
		pattern: regexp.MustCompile(`[0-9]\s*[+\-*/^%]\s*[0-9]|(?i)\b(calculate|compute|sum|multiply|divide|subtract)\b`),
		agent:   "calculator",
		reason:  "prompt contains arithmetic",
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(summari[sz]e|condense|shorten|tl;?dr|key points)\b`),
		agent:   "summarizer",
		reason:  "prompt asks for a summary",
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(research|find|look ?up|search|investigate|what is|who is)\b`),
		agent:   "researcher",
		reason:  "prompt asks for information",
	},
}

// defaultRoute is used when no rule matches.
const defaultRoute = "researcher"

// Route picks a persona for a prompt from the catalog. Rules only fire for
// personas the catalog actually has; otherwise the catalog's first persona
// is the fallback.
func Route(prompt string, catalog *Catalog) (agent, reason string) {
	for _, rule := range routeRules {
		if _, ok := catalog.Get(rule.agent); !ok {
			continue
		}
		if rule.pattern.MatchString(prompt) {
			return rule.agent, rule.reason
		}
	}
	if _, ok := catalog.Get(defaultRoute); ok {
		return defaultRoute, "no rule matched, using default"
	}
	names := catalog.Names()
	if len(names) > 0 {
		return names[0], "no rule matched, using first catalog entry"
	}
	return "", "catalog is empty"
}
