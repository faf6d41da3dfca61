package core

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

// TypecodeResolver finds the short code a class's identifier pattern
// carries and maps it to its display value through the settings block.
type TypecodeResolver struct{}

func NewTypecodeResolver() TypecodeResolver {
	return TypecodeResolver{}
}

// Resolve walks the ancestor chain of className nearest-first and stops at
// the first ancestor whose induced slotName has a structured pattern.
// Ancestors that define the slot without a pattern are skipped.  Once a
// pattern is found it is authoritative: a malformed syntax fails
// immediately instead of falling through to further ancestors.
func (r TypecodeResolver) Resolve(schema ports.SchemaAccessorPort, className string, slotName string) (types.ResolvedCode, error) {
	if schema == nil {
		return types.ResolvedCode{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema is required", nil)
	}
	className = strings.TrimSpace(className)
	slotName = strings.TrimSpace(slotName)
	if className == "" || slotName == "" {
		return types.ResolvedCode{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"class name and slot name are required", nil)
	}

	ancestors, err := schema.ClassAncestors(className)
	if err != nil {
		if types.IsKind(err, types.ErrorKindClassNotFound) {
			return types.ResolvedCode{}, err
		}
		return types.ResolvedCode{}, types.NewFailure(types.ErrorKindClassNotFound, errbuilder.CodeNotFound,
			"class not defined in schema: "+className, err)
	}

	definedBy := ""
	for _, ancestor := range ancestors {
		attributes, err := schema.InducedAttributes(ancestor)
		if err != nil {
			return types.ResolvedCode{}, err
		}
		slot, ok := attributes[slotName]
		if !ok {
			continue
		}
		if definedBy == "" {
			definedBy = ancestor
		}
		if slot.StructuredPattern == nil || strings.TrimSpace(slot.StructuredPattern.Syntax) == "" {
			log.Debug().
				Str("class", className).
				Str("ancestor", ancestor).
				Str("slot", slotName).
				Msg("slot has no structured pattern, trying next ancestor")
			continue
		}

		name, err := ExtractTypecode(slot.StructuredPattern.Syntax)
		if err != nil {
			return types.ResolvedCode{}, err
		}
		value, err := LookupTypecode(schema, name)
		if err != nil {
			return types.ResolvedCode{}, err
		}
		return types.ResolvedCode{
			Class:    className,
			Slot:     slotName,
			Ancestor: ancestor,
			Name:     name,
			Value:    value,
		}, nil
	}

	if definedBy == "" {
		return types.ResolvedCode{}, types.NewFailure(types.ErrorKindSlotNotDefinedByHierarchy, errbuilder.CodeNotFound,
			"no class in the hierarchy of "+className+" defines slot "+slotName, nil)
	}
	return types.ResolvedCode{}, types.NewFailure(types.ErrorKindTypecodeNotFound, errbuilder.CodeNotFound,
		"slot "+slotName+" of "+className+" has no structured pattern in its hierarchy", nil)
}

// ExtractTypecode pulls CODE out of a syntax string shaped like
// "prefix:{CODE}-rest".  The segment after the first colon, up to the
// next colon or hyphen, must be wrapped in braces and non-empty inside
// them.
func ExtractTypecode(syntax string) (string, error) {
	_, rest, ok := strings.Cut(syntax, ":")
	if !ok {
		return "", patternParseError(syntax, "missing ':'")
	}
	if !strings.Contains(rest, "-") {
		return "", patternParseError(syntax, "missing '-' after the local part")
	}
	// The local part ends at the next ':' or '-', whichever comes first.
	chunk := rest[:strings.IndexAny(rest, ":-")]
	if len(chunk) < 3 || !strings.HasPrefix(chunk, "{") || !strings.HasSuffix(chunk, "}") {
		return "", patternParseError(syntax, "typecode segment must look like {code}")
	}
	code := chunk[1 : len(chunk)-1]
	if strings.ContainsAny(code, "{}") {
		return "", patternParseError(syntax, "typecode segment must look like {code}")
	}
	return code, nil
}

// LookupTypecode maps a short code to its setting_value.
func LookupTypecode(schema ports.SchemaAccessorPort, code string) (string, error) {
	settings, ok := schema.Settings()
	if !ok {
		return "", types.NewFailure(types.ErrorKindNoSettingsBlock, errbuilder.CodeNotFound,
			"schema does not include a settings block", nil)
	}
	setting, ok := settings[code]
	if !ok {
		return "", types.NewFailure(types.ErrorKindTypecodeNotFound, errbuilder.CodeNotFound,
			"typecode not found in settings: "+code, nil)
	}
	return setting.SettingValue, nil
}

func patternParseError(syntax string, reason string) error {
	return types.NewFailure(types.ErrorKindPatternParse, errbuilder.CodeInternal,
		"cannot parse structured pattern syntax "+syntax+": "+reason, nil)
}
