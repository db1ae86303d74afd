package book

import (
	"encoding/xml"
	"fmt"
)

const (
	encryptionPath = "META-INF/encryption.xml"
	// sinfPath marks Apple FairPlay.
	sinfPath = "META-INF/sinf.xml"
)

// fontObfuscation lists encryption algorithms that only mangle embedded
// fonts. Anything else in encryption.xml is treated as DRM.
var fontObfuscation = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

type encryptionDoc struct {
	XMLName xml.Name `xml:"encryption"`
	Data    []struct {
		Method struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
	} `xml:"EncryptedData"`
}

// checkDRM fails with ErrDRMProtected when the container is encrypted
// beyond font obfuscation. The bool reports obfuscated fonts.
func checkDRM(a *Archive) (bool, error) {
	if a.find(sinfPath) != nil {
		return false, ErrDRMProtected
	}
	if a.find(encryptionPath) == nil {
		return false, nil
	}

	data, err := a.ReadFile(encryptionPath)
	if err != nil {
		return false, fmt.Errorf("book: read encryption.xml: %w", err)
	}
	var doc encryptionDoc
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		// Unreadable encryption data is assumed to protect content.
		return false, ErrDRMProtected
	}

	obfuscated := false
	for _, d := range doc.Data {
		if !fontObfuscation[d.Method.Algorithm] {
			return false, ErrDRMProtected
		}
		obfuscated = true
	}
	return obfuscated, nil
}
