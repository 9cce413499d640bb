package toml

import "testing"

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []PathSegment
		wantErr bool
	}{
		{
			name: "single key",
			path: "name",
			want: []PathSegment{{Key: "name", Index: -1}},
		},
		{
			name: "dotted key",
			path: "owner.name",
			want: []PathSegment{{Key: "owner", Index: -1}, {Key: "name", Index: -1}},
		},
		{
			name: "index then key",
			path: "fruit[0].name",
			want: []PathSegment{{Key: "fruit", Index: -1}, {Index: 0}, {Key: "name", Index: -1}},
		},
		{
			name: "quoted key with dot",
			path: `"a.b".c`,
			want: []PathSegment{{Key: "a.b", Index: -1, IsQuoted: true}, {Key: "c", Index: -1}},
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
		{
			name:    "trailing dot",
			path:    "a.",
			wantErr: true,
		},
		{
			name:    "unterminated bracket",
			path:    "a[0",
			wantErr: true,
		},
		{
			name:    "negative index",
			path:    "a[-1]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePath(%q) = %v, want error", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePath(%q) unexpected error: %v", tt.path, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parsePath(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
