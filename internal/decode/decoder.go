package decode

import (
	"strings"

	"playscraper/internal/components/telemetry"
	"playscraper/internal/tree"
)

const (
	report_decode_prefix    = "decode.prefix"
	report_decode_list_line = "decode.list-line"
)

// Options hold the constants tied to the upstream protocol generation.
type Options struct {
	// FramingPrefixLength is the number of characters the batch RPC protocol
	// prepends to its body (e.g. ")]}'\n\n").
	FramingPrefixLength int
	// ListPayloadLine is the 0-based line that carries the payload in
	// line-oriented list responses.
	ListPayloadLine int
}

var DefaultOptions = Options{
	FramingPrefixLength: 6,
	ListPayloadLine:     3,
}

// Decoder turns raw response text (an HTML page or a batch RPC envelope) into
// a normalized root tree.
type Decoder struct {
	opts Options
	tel  telemetry.API
}

func NewDecoder(opts Options, tel telemetry.API) Decoder {
	return Decoder{opts: opts, tel: tel}
}

func (d Decoder) Decode(raw string) (tree.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return tree.Value{}, &EmptyInputError{Stage: "decode"}
	}
	root, err := d.decode(raw)
	if err != nil {
		return tree.Value{}, err
	}
	return Normalize(root), nil
}

func (d Decoder) decode(raw string) (tree.Value, error) {
	body := raw
	if len(raw) >= d.opts.FramingPrefixLength {
		body = raw[d.opts.FramingPrefixLength:]
	}
	parsed, err := tree.Parse(body)
	if err == nil && parsed.IsContainer() {
		return parsed, nil
	}
	if err != nil {
		d.tel.ReportDebug(report_decode_prefix, err)
	}

	data, count, scriptErr := ParseScriptData(raw)
	if scriptErr != nil {
		return tree.Value{}, scriptErr
	}
	if count > 0 {
		return data, nil
	}
	return tree.Value{}, &DecodeError{Snippet: snippet(raw), Cause: err}
}

// ListDecoder decodes line-oriented list responses, the payload sits on a
// fixed line. It falls back to the general decoder when that line is missing
// or unparsable.
type ListDecoder struct {
	opts     Options
	tel      telemetry.API
	fallback Decoder
}

func NewListDecoder(opts Options, tel telemetry.API) ListDecoder {
	return ListDecoder{
		opts:     opts,
		tel:      tel,
		fallback: NewDecoder(opts, tel),
	}
}

func (d ListDecoder) Decode(raw string) (tree.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return tree.Value{}, &EmptyInputError{Stage: "list decode"}
	}

	lines := strings.Split(raw, "\n")
	if d.opts.ListPayloadLine < len(lines) {
		parsed, err := tree.Parse(lines[d.opts.ListPayloadLine])
		if err == nil {
			return Normalize(parsed), nil
		}
		d.tel.ReportDebug(report_decode_list_line, d.opts.ListPayloadLine, err)
	}
	return d.fallback.Decode(raw)
}
