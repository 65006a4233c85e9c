package vfs

import "bytes"

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a UTF-8 byte order mark from content if present.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, bomUTF8)
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
func NormalizeLineEndings(content []byte) []byte {
	if bytes.IndexByte(content, '\r') < 0 {
		return content
	}

	result := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' {
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			result = append(result, '\n')
			continue
		}
		result = append(result, content[i])
	}
	return result
}
