package system

import "bytes"

// scanLine finds the first line in data. Lines end in "\n" or "\r\n". At
// stream end the remaining data is a line too, with a final "\r" dropped.
func scanLine(data []byte, atEOF bool) (advance int, line string, ok bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, string(dropCR(data[:i])), true
	}
	if atEOF && len(data) > 0 {
		return len(data), string(dropCR(data)), true
	}
	return 0, "", false
}

func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}
