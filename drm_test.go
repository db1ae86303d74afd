package book

import (
	"errors"
	"testing"
)

func encryptionXML(algorithms ...string) string {
	s := `<?xml version="1.0" encoding="UTF-8"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container" xmlns:enc="http://www.w3.org/2001/04/xmlenc#">`
	for _, a := range algorithms {
		s += `<enc:EncryptedData><enc:EncryptionMethod Algorithm="` + a + `"/></enc:EncryptedData>`
	}
	return s + `</encryption>`
}

func TestCheckDRM(t *testing.T) {
	tests := []struct {
		name           string
		files          map[string]string
		wantObfuscated bool
		wantErr        error
	}{
		{
			name:  "no encryption.xml",
			files: map[string]string{"OEBPS/content.opf": "<package/>"},
		},
		{
			name:           "IDPF font obfuscation",
			files:          map[string]string{"META-INF/encryption.xml": encryptionXML("http://www.idpf.org/2008/embedding")},
			wantObfuscated: true,
		},
		{
			name:           "Adobe font obfuscation",
			files:          map[string]string{"META-INF/encryption.xml": encryptionXML("http://ns.adobe.com/pdf/enc#RC")},
			wantObfuscated: true,
		},
		{
			name:    "AES content encryption",
			files:   map[string]string{"META-INF/encryption.xml": encryptionXML("http://www.w3.org/2001/04/xmlenc#aes128-cbc")},
			wantErr: ErrDRMProtected,
		},
		{
			name: "mixed obfuscation and encryption",
			files: map[string]string{"META-INF/encryption.xml": encryptionXML(
				"http://www.idpf.org/2008/embedding",
				"http://www.w3.org/2001/04/xmlenc#aes128-cbc")},
			wantErr: ErrDRMProtected,
		},
		{
			name:  "empty encryption.xml",
			files: map[string]string{"META-INF/encryption.xml": encryptionXML()},
		},
		{
			name:    "unparsable encryption.xml",
			files:   map[string]string{"META-INF/encryption.xml": "<encryption"},
			wantErr: ErrDRMProtected,
		},
		{
			name:    "Apple FairPlay",
			files:   map[string]string{"META-INF/sinf.xml": "<sinf/>"},
			wantErr: ErrDRMProtected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obfuscated, err := checkDRM(newTestArchive(t, tt.files))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("checkDRM error = %v; want %v", err, tt.wantErr)
			}
			if obfuscated != tt.wantObfuscated {
				t.Errorf("checkDRM obfuscated = %v; want %v", obfuscated, tt.wantObfuscated)
			}
		})
	}
}

func TestErrDRMProtected_IsBookFormat(t *testing.T) {
	if !errors.Is(ErrDRMProtected, ErrBookFormat) {
		t.Error("ErrDRMProtected should match ErrBookFormat")
	}
}
