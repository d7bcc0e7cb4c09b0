package pipeline

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean text untouched",
			in:   "Passa da Bar Luce per un caffè!",
			want: "Passa da Bar Luce per un caffè!",
		},
		{
			name: "curly placeholder",
			in:   "Vieni da {shop_name} oggi!",
			want: "Vieni da Bar Luce oggi!",
		},
		{
			name: "name placeholder",
			in:   "Ti aspettiamo da {name}.",
			want: "Ti aspettiamo da Bar Luce.",
		},
		{
			name: "italian template leak",
			in:   "Scopri Nome del Negozio a due passi da te",
			want: "Scopri Bar Luce a due passi da te",
		},
		{
			name: "open bracket leak",
			in:   "Offerta da [Nome del Negozio!",
			want: "Offerta da Bar Luce!",
		},
		{
			name: "leftover brackets collapsed",
			in:   "Sconto del 10% da [il negozio qui vicino]",
			want: "Sconto del 10% da Bar Luce",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  Vieni a trovarci!  ",
			want: "Vieni a trovarci!",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitize(tc.in, "Bar Luce"); got != tc.want {
				t.Errorf("sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
