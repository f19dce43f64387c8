package chi

import (
	"github.com/roomcraft/reco/internal/domain/color"
	"github.com/roomcraft/reco/internal/usecase/recommend"
)

// recommendRequest is the POST /reco/recommend body. Pointer fields
// distinguish "absent" from an explicit zero so the pipeline can apply
// its own defaults.
type recommendRequest struct {
	Text        string   `json:"text"`
	ImageB64    string   `json:"image_b64"`
	K           int      `json:"k"`
	Type        string   `json:"type"`
	Additionals []string `json:"additionals"`
	Strict      *bool    `json:"strict"`
	WImage      *float64 `json:"w_image"`
	WText       *float64 `json:"w_text"`
	ColorWeight *float64 `json:"color_weight"`
	ColorMode   string   `json:"color_mode"`
}

// recommendResponse mirrors the page under three keys because different
// storefront components read different ones.
type recommendResponse struct {
	Items    []recommend.View `json:"items"`
	Products []recommend.View `json:"products"`
	Results  []recommend.View `json:"results"`
	Related  []recommend.View `json:"related,omitempty"`
	From     string           `json:"from"`
	Count    int              `json:"count"`
	Fallback *string          `json:"fallback"`
	Debug    debugPayload     `json:"debug"`
}

type debugPayload struct {
	ReceivedAdditionals []string   `json:"received_additionals"`
	FieldsWanted        []string   `json:"fields_wanted"`
	Strict              bool       `json:"strict"`
	AfterStrictCount    int        `json:"after_strict_count"`
	ANNTopRows          []int      `json:"ann_top_rows"`
	ANNTopScores        []float64  `json:"ann_top_scores"`
	WImage              float64    `json:"w_image"`
	WText               float64    `json:"w_text"`
	ColorMode           string     `json:"color_mode"`
	ColorWeight         float64    `json:"color_weight"`
	RoomAvgLab          *color.Lab `json:"room_avg_lab,omitempty"`
	ItemsWithAvgLab     int        `json:"items_with_avg_lab"`
	TopItemDeltaE       *float64   `json:"top_item_deltaE,omitempty"`
	TopItemBoost        *float64   `json:"top_item_boost,omitempty"`
}

func buildRecommendResponse(res *recommend.Result) recommendResponse {
	items := res.Items
	if items == nil {
		items = []recommend.View{}
	}

	resp := recommendResponse{
		Items:    items,
		Products: items,
		Results:  items,
		Related:  res.Related,
		From:     "catalog",
		Count:    len(items),
		Debug: debugPayload{
			ReceivedAdditionals: emptyIfNil(res.Telemetry.ReceivedLabels),
			FieldsWanted:        emptyIfNil(res.Telemetry.WantedFlags),
			Strict:              res.Telemetry.Strict,
			AfterStrictCount:    res.Telemetry.AfterCount,
			ANNTopRows:          res.Telemetry.RawRows,
			ANNTopScores:        res.Telemetry.RawScores,
			WImage:              res.Telemetry.WImage,
			WText:               res.Telemetry.WText,
			ColorMode:           string(res.Telemetry.ColorMode),
			ColorWeight:         res.Telemetry.ColorWeight,
			RoomAvgLab:          res.Telemetry.RoomLab,
			ItemsWithAvgLab:     res.Telemetry.ItemsWithLab,
			TopItemDeltaE:       res.Telemetry.TopDeltaE,
			TopItemBoost:        res.Telemetry.TopBoost,
		},
	}
	if res.Fallback != "" {
		f := res.Fallback
		resp.Fallback = &f
	}
	return resp
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
