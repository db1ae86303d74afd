package book

import (
	"errors"
	"testing"
)

func TestLocatePackage(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    string
		wantErr error
	}{
		{
			name:  "container.xml",
			files: map[string]string{"META-INF/container.xml": testContainerXML},
			want:  "OEBPS/content.opf",
		},
		{
			name:  "case insensitive container path",
			files: map[string]string{"meta-inf/CONTAINER.xml": testContainerXML},
			want:  "OEBPS/content.opf",
		},
		{
			name:  "BOM before declaration",
			files: map[string]string{"META-INF/container.xml": "\xEF\xBB\xBF" + testContainerXML},
			want:  "OEBPS/content.opf",
		},
		{
			name:  "fallback to opf scan",
			files: map[string]string{"book/Package.OPF": "<package/>", "book/a.xhtml": "<html/>"},
			want:  "book/Package.OPF",
		},
		{
			name:    "nothing to find",
			files:   map[string]string{"a.txt": "a"},
			wantErr: ErrBookFormat,
		},
		{
			name:    "empty rootfiles",
			files:   map[string]string{"META-INF/container.xml": `<container><rootfiles></rootfiles></container>`},
			wantErr: ErrBookFormat,
		},
		{
			name:    "blank full-path",
			files:   map[string]string{"META-INF/container.xml": `<container><rootfiles><rootfile full-path="  "/></rootfiles></container>`},
			wantErr: ErrBookFormat,
		},
		{
			name: "prefers package media type",
			files: map[string]string{"META-INF/container.xml": `<container><rootfiles>
<rootfile full-path="alt.pdf" media-type="application/pdf"/>
<rootfile full-path="main.opf" media-type="application/oebps-package+xml"/>
</rootfiles></container>`},
			want: "main.opf",
		},
		{
			name: "first non-empty rootfile",
			files: map[string]string{"META-INF/container.xml": `<container><rootfiles>
<rootfile full-path=""/>
<rootfile full-path="second.opf"/>
</rootfiles></container>`},
			want: "second.opf",
		},
		{
			name:    "malformed xml",
			files:   map[string]string{"META-INF/container.xml": `<container><rootfiles>`},
			wantErr: ErrBookFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locatePackage(newTestArchive(t, tt.files))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("locatePackage error = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("locatePackage: %v", err)
			}
			if got != tt.want {
				t.Errorf("locatePackage = %q; want %q", got, tt.want)
			}
		})
	}
}
