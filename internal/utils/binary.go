package utils

import (
	"io"
	"os"
	"unicode/utf8"
)

const sniffLen = 8000

// IsBinary reports whether the provided byte slice appears to contain binary
// data: any NUL byte or an invalid UTF-8 sequence classifies it as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// IsFileBinary reads up to sniffLen bytes from the file at path and determines
// if the content appears to be binary.
func IsFileBinary(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLen)
	bytesRead, readError := fileHandle.Read(buffer)
	if readError != nil && readError != io.EOF {
		return false, readError
	}
	return IsBinary(buffer[:bytesRead]), nil
}
