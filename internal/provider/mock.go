package provider

import (
	"context"
	"slices"
	"strconv"

	"github.com/nao1215/hotellens/internal/model"
)

// Mock serves a fixed set of hotels around Sacramento, CA.
type Mock struct {
	hotels []model.Hotel
}

// NewMock returns the built-in dataset provider.
func NewMock() *Mock {
	return &Mock{hotels: mockHotels()}
}

// Name implements Provider.
func (*Mock) Name() model.Source {
	return model.SourceMock
}

// Search implements Provider. It never fails.
func (m *Mock) Search(_ context.Context, params model.SearchParams) ([]model.Hotel, error) {
	params = params.WithDefaults()
	hotels := make([]model.Hotel, len(m.hotels))
	for i, h := range m.hotels {
		h.Photos = slices.Clone(h.Photos)
		hotels[i] = h
	}
	return rank(hotels, params), nil
}

func unsplash(id string, width int) string {
	return "https://images.unsplash.com/photo-" + id + "?q=80&w=" + strconv.Itoa(width) + "&auto=format&fit=crop"
}

func mockHotel(id, name string, lat, lng float64, address string, rating, price float64,
	age *int, policy *string, confidence model.Confidence, photoIDs ...string) model.Hotel {
	photos := make([]string, len(photoIDs))
	for i, p := range photoIDs {
		photos[i] = unsplash(p, 1600)
	}
	return model.Hotel{
		ID:            id,
		Name:          name,
		Lat:           lat,
		Lng:           lng,
		Address:       address,
		Rating:        model.FloatPtr(rating),
		PriceNightly:  model.FloatPtr(price),
		MinCheckInAge: age,
		PolicyText:    policy,
		Confidence:    confidence,
		Source:        model.SourceMock,
		ThumbnailURL:  unsplash(photoIDs[0], 1200),
		Photos:        photos,
	}
}

func mockHotels() []model.Hotel {
	return []model.Hotel{
		mockHotel("m1", "Riverlake Inn", 38.493, -121.517, "123 Lakeview Dr", 4.1, 129,
			model.IntPtr(18), model.StringPtr("Minimum age to check in is 18 years old."), model.ConfidenceExplicit,
			"1551776235-dde6d4829808", "1505691938895-1758d7feb511", "1501117716987-c8e1ecb2101f", "1522708323590-d24dbb6b0267"),
		mockHotel("m2", "Downtown Suites", 38.578, -121.495, "1 Main St", 4.5, 179,
			model.IntPtr(21), model.StringPtr("Guests must be 21 to check in."), model.ConfidenceParsed,
			"1488747279002-c8523379faaa", "1496412705862-e0088f16f791", "1542314831-068cd1dbfeeb"),
		mockHotel("m3", "Campus Lodge", 38.55, -121.43, "45 College Ave", 3.8, 99,
			nil, nil, model.ConfidenceUnknown,
			"1535827841776-24afc1e255ac", "1505691938895-1758d7feb511"),
		mockHotel("m4", "Airport Motel", 38.561, -121.444, "500 Flight Rd", 3.2, 79,
			model.IntPtr(18), model.StringPtr("Minimum age to check in: 18 years."), model.ConfidenceExplicit,
			"1505691723518-36a2a21c4d84", "1528909514045-2fa4ac7a08ba"),
		mockHotel("m5", "Seaside Bungalows", 38.49, -121.48, "2 Ocean View", 4.0, 209,
			model.IntPtr(25), model.StringPtr("Guests must be 25 to check in unless accompanied by an adult."), model.ConfidenceParsed,
			"1505691723519-123a3c5f0b4d", "1505692794405-6d7b6f66b3d2"),
		mockHotel("m6", "Historic Inn", 38.59, -121.52, "9 Heritage Sq", 4.3, 189,
			model.IntPtr(18), model.StringPtr("18+ with ID required at check-in."), model.ConfidenceExplicit,
			"1483683804023-6ccdb62f86ef", "1493809842364-78817add7ffb"),
		mockHotel("m7", "Budget Inn", 38.57, -121.46, "88 Savings Ln", 2.9, 59,
			nil, model.StringPtr("Call property for age policy."), model.ConfidenceUnknown,
			"1505692794400-5c1b8c1d3b58", "1526779259212-7d0a0d5f98b3"),
		mockHotel("m8", "Luxury Resort", 38.60, -121.49, "1 Grand Ave", 4.9, 349,
			model.IntPtr(21), model.StringPtr("Guests must be 21+ to check in."), model.ConfidenceExplicit,
			"1496417263034-38ec4f0b665a", "1505691938895-1758d7feb511"),
		mockHotel("m9", "Countryside Retreat", 38.52, -121.48, "77 Meadow Rd", 4.2, 139,
			model.IntPtr(19), model.StringPtr("Minimum check-in age is 19."), model.ConfidenceParsed,
			"1505692794405-6d7b6f66b3d2"),
	}
}
