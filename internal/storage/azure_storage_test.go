package storage

import "testing"

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		url       string
		container string
		blob      string
		wantErr   bool
	}{
		{url: "https://acct.blob.core.windows.net/ecg/2024/patient-7.png", container: "ecg", blob: "2024/patient-7.png"},
		{url: "https://acct.blob.core.windows.net/ecg?blob=patient-7.png", container: "ecg", blob: "patient-7.png"},
		{url: "https://acct.blob.core.windows.net/ecg", wantErr: true},
		{url: "https://acct.blob.core.windows.net/", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		container, blob, err := ParseBlobURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: expected no error, got %v", tt.url, err)
			continue
		}
		if container != tt.container || blob != tt.blob {
			t.Errorf("%s: expected (%s, %s), got (%s, %s)", tt.url, tt.container, tt.blob, container, blob)
		}
	}
}

func TestIsBlobURL(t *testing.T) {
	if !IsBlobURL("https://acct.blob.core.windows.net/ecg/a.png") {
		t.Error("Expected blob URL to be recognized")
	}
	if !IsBlobURL("https://ACCT.Blob.Core.Windows.Net/ecg/a.png") {
		t.Error("Expected host match to ignore case")
	}
	if IsBlobURL("https://example.com/ecg/a.png") {
		t.Error("Expected plain HTTP URL not to be a blob URL")
	}
}

func TestNewAzureStorage_InvalidKey(t *testing.T) {
	if _, err := NewAzureStorage("acct", "not base64!", 1024); err == nil {
		t.Error("Expected error for a malformed account key")
	}
}
