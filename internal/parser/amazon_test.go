package parser

import (
	"testing"

	"github.com/ankitdev/price-radar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Parser = (*AmazonParser)(nil)

func TestAmazonParseResultNode(t *testing.T) {
	p := NewAmazonParser()

	tests := []struct {
		name         string
		html         string
		wantTitle    string
		wantPrice    string
		wantRating   string
		wantRatingOK bool
		hasError     bool
	}{
		{
			name: "full result node",
			html: `<div data-component-type="s-search-result">
						<h2><a><span>Apple iPhone 15 (128 GB) - Black</span></a></h2>
						<span class="a-price"><span class="a-price-whole">61,999</span></span>
						<i class="a-icon a-icon-star-small"><span class="a-icon-alt">4.5 out of 5 stars</span></i>
					</div>`,
			wantTitle:    "Apple iPhone 15 (128 GB) - Black",
			wantPrice:    "61,999",
			wantRating:   "4.5 out of 5 stars",
			wantRatingOK: true,
		},
		{
			name: "rating missing is not an error",
			html: `<div data-component-type="s-search-result">
						<h2><span>boAt Airdopes 141</span></h2>
						<span class="a-price-whole">1,299</span>
					</div>`,
			wantTitle:    "boAt Airdopes 141",
			wantPrice:    "1,299",
			wantRatingOK: false,
		},
		{
			name: "missing title is a hard failure",
			html: `<div data-component-type="s-search-result">
						<span class="a-price-whole">799</span>
					</div>`,
			hasError: true,
		},
		{
			name: "missing price is a hard failure",
			html: `<div data-component-type="s-search-result">
						<h2><span>Some Product</span></h2>
					</div>`,
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := p.ParseResultNode(tt.html)

			if tt.hasError {
				assert.Error(t, err)
				assert.Nil(t, raw)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, raw)
			assert.Equal(t, models.SourceAmazon, raw.Source)

			title, ok := raw.Get(models.FieldTitle)
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, title)

			price, ok := raw.Get(models.FieldPrice)
			require.True(t, ok)
			assert.Equal(t, tt.wantPrice, price)

			rating, ok := raw.Get(models.FieldRating)
			assert.Equal(t, tt.wantRatingOK, ok)
			if tt.wantRatingOK {
				assert.Equal(t, tt.wantRating, rating)
			}
		})
	}
}

func TestAmazonAvailabilityMarker(t *testing.T) {
	p := NewAmazonParser()

	raw, err := p.ParseResultNode(`<div data-component-type="s-search-result">
		<h2><span>Old Gadget</span></h2>
		<span class="a-price-whole">2,499</span>
		<span>Currently unavailable.</span>
	</div>`)
	require.NoError(t, err)

	availability, ok := raw.Get(models.FieldAvailability)
	require.True(t, ok)
	assert.Equal(t, "Unavailable", availability)
}
