package decode

import (
	"regexp"

	"playscraper/internal/tree"
)

var (
	scriptBlockRegex = regexp.MustCompile(`>AF_initDataCallback[\s\S]*?</script`)
	scriptKeyRegex   = regexp.MustCompile(`'(ds:.*?)'`)
	scriptValueRegex = regexp.MustCompile(`data:([\s\S]*?), sideChannel: \{\}\}\);</`)
)

// ParseScriptData collects every AF_initDataCallback block of an HTML page
// into one object keyed by the block's "ds:N" identifier. Later duplicates
// overwrite earlier ones. The returned count is the number of blocks
// installed. A block whose data cannot be parsed fails the whole page with a
// *DecodeError naming the block.
func ParseScriptData(html string) (tree.Value, int, error) {
	out := map[string]tree.Value{}
	for _, block := range scriptBlockRegex.FindAllString(html, -1) {
		key := scriptKeyRegex.FindStringSubmatch(block)
		value := scriptValueRegex.FindStringSubmatch(block)
		if key == nil || value == nil {
			continue
		}

		parsed, err := tree.Parse(value[1])
		if err != nil {
			return tree.Value{}, 0, &DecodeError{
				Snippet: snippet(html),
				Block:   key[1],
				Cause:   err,
			}
		}
		out[key[1]] = parsed
	}
	return tree.Object(out), len(out), nil
}
