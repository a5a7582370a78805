package rows_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexmglover/Deep/pkg/rows"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2023, time.January, 2, 9, 5, 7, 0, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"", "1672650307"},
		{"%U", "1672650307"},
		{"%Y-%m-%d", "2023-01-02"},
		{"%y/%n/%j", "23/1/2"},
		{"%l %F %jnd", "Monday January 2nd"},
		{"%D, %M %d", "Mon, Jan 02"},
		{"%H:%i:%s", "09:05:07"},
		{"%g:%i %A", "9:05 AM"},
		{"%G %h", "9 09"},
		{"%N %w %z", "1 1 1"},
		{"%t %L", "31 0"},
		{"%jS", "2S"},
		{"%j%S", "2nd"},
		{"%W %o", "01 2023"},
		{"%c", "2023-01-02T09:05:07+00:00"},
		{"100%% %Q", "100% %Q"},
		{"trailing %", "trailing %"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, rows.FormatDate(ts, tt.format))
		})
	}
}
