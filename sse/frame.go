package sse

import "bytes"

type frameKind int

const (
	frameNone frameKind = iota // nothing decodable yet
	frameData                  // a complete data frame
	frameDone                  // the [DONE] sentinel
)

// frame locates the first decodable unit of a buffer.
type frame struct {
	kind    frameKind
	payload []byte // aliases the scanned buffer
	start   int    // bytes of discarded segments before the frame
	end     int    // bytes through the frame and its separator
}

// nextFrame scans buf for the first complete frame. Blank segments and
// terminated segments without a data line are skipped. Within a segment,
// lines before the data line, such as comments or event and id fields, are
// ignored. When no frame is
// complete, end is the number of leading bytes that may be discarded.
//
// A terminated segment is always complete. The unterminated tail is complete
// only when its payload is a closed JSON object, so a frame split anywhere,
// even right after a nested closing brace, waits for more bytes. At EOF the
// tail counts as terminated for skipping purposes.
func nextFrame(buf []byte, atEOF bool) frame {
	off := 0
	for off < len(buf) {
		rest := buf[off:]
		seg, terminated := rest, false
		if i := bytes.Index(rest, []byte(separator)); i >= 0 {
			seg, terminated = rest[:i], true
		}
		end := off + len(seg)
		if terminated {
			end += len(separator)
		}
		skippable := terminated || atEOF

		body := bytes.TrimLeft(seg, " \t\r\n")
		if len(body) == 0 {
			if skippable {
				off = end
				continue
			}
			break
		}
		payload, ok := dataField(body)
		if !ok {
			if skippable {
				off = end
				continue
			}
			break
		}
		if bytes.Equal(payload, []byte(doneMarker)) {
			return frame{kind: frameDone, start: off, end: end}
		}
		if !terminated && !closedObject(payload) {
			break
		}
		return frame{kind: frameData, payload: payload, start: off, end: end}
	}
	return frame{kind: frameNone, start: off, end: off}
}

// dataField returns the value of the first data line in segment.
func dataField(segment []byte) ([]byte, bool) {
	for len(segment) > 0 {
		line, rest, _ := bytes.Cut(segment, []byte("\n"))
		if payload, ok := cutData(bytes.TrimLeft(line, " \t\r")); ok {
			return payload, true
		}
		segment = rest
	}
	return nil, false
}

// cutData strips the data field name and the single optional space after
// its colon, plus surrounding whitespace.
func cutData(segment []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(segment, []byte(dataPrefix))
	if !ok {
		return nil, false
	}
	rest = bytes.TrimPrefix(rest, []byte(" "))
	return bytes.TrimSpace(rest), true
}

// closedObject reports whether p is a single JSON object whose outermost
// brace closes at the last byte. Brackets inside strings are ignored.
func closedObject(p []byte) bool {
	if len(p) < 2 || p[0] != '{' || p[len(p)-1] != '}' {
		return false
	}
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i, c := range p {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i == len(p)-1
			}
			if depth < 0 {
				return false
			}
		}
	}
	return false
}
