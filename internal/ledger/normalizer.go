package ledger

import (
	"regexp"
	"strings"
)

var (
	spaces           = regexp.MustCompile(`\s+`)
	placeholderTeams = regexp.MustCompile(`(?i)group|place|round|final`)
)

// DefaultAliases maps provider spellings to the names used in the ledger
func DefaultAliases() map[string]string {
	return map[string]string{
		"Morocco":  "Maroc",
		"Tunisia":  "Tunisie",
		"DR Congo": "Congo",
		"Burkina":  "Burkina Faso",
	}
}

// TeamNormalizer canonicalises team names so that the same team matches
// across sources. Aliases apply to the whole name only.
type TeamNormalizer struct {
	aliases map[string]string
}

// NewTeamNormalizer creates a normalizer; nil aliases means DefaultAliases
func NewTeamNormalizer(aliases map[string]string) *TeamNormalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &TeamNormalizer{aliases: aliases}
}

// Normalize trims, collapses internal whitespace and applies aliases
func (n *TeamNormalizer) Normalize(name string) string {
	cleaned := spaces.ReplaceAllString(strings.TrimSpace(name), " ")
	if alias, ok := n.aliases[cleaned]; ok {
		return alias
	}
	return cleaned
}

// IsPlaceholder reports names such as "Winner Group A" or "Loser Semi-Final 1"
// that stand in for teams not yet known.
func IsPlaceholder(name string) bool {
	return placeholderTeams.MatchString(name)
}
