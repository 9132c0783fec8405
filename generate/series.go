package generate

import (
	"fmt"

	"github.com/katalvlaran/lvlath/builder"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/mutate"
)

// seriesLinkType is the elastic LinkType every synthetic-sequence
// generator stamps its samples under: a fresh, auto-created type whose
// range widens as samples are inserted, exercising spec.md §4.H's
// elastic-widening rule against real generated data instead of only
// literal test fixtures (SPEC_FULL.md §5).
const seriesLinkType = "Signal"

// layoutSeries inserts a path topology of len(series) vertices and
// len(series)-1 links, each link's document carrying the sample at its
// origin index as "value" (so the elastic LinkType sees every sample
// except the last, which has no outgoing link).
func layoutSeries(g *catalog.Graph, store *document.Store, series []float64) (Result, error) {
	isNewType := !g.LinkTypes.Has(seriesLinkType)
	g.LinkTypes.EnsureLinkType(seriesLinkType).Function = "elastic"
	if isNewType {
		rec := fmt.Sprintf(`{"id":%q,"color":null,"image":null,"min":0,"max":0,"function":"elastic","units":null}`, seriesLinkType)
		if _, err := store.Insert(g.Name, document.TableLinkTypes, seriesLinkType, rec); err != nil {
			return Result{}, err
		}
	}

	var res Result
	prev := ""
	for i := range series {
		primary, _, err := mutate.InsertNode(g, store, "Node", fmt.Sprintf(`{"label":%q}`, fmt.Sprintf("sample_%d", i)))
		if err != nil {
			return Result{}, err
		}
		res.NodesInserted++
		if i > 0 {
			origin, terminus, err := parseEndpoints(prev, primary)
			if err != nil {
				return Result{}, err
			}
			doc := fmt.Sprintf(`{"value":%g}`, series[i-1])
			if _, _, err := mutate.InsertLink(g, store, seriesLinkType, origin, terminus, doc); err != nil {
				return Result{}, err
			}
			res.LinksInserted++
		}
		prev = primary
	}
	return res, nil
}

func parseEndpoints(originPrimary, terminusPrimary string) (int, int, error) {
	origin, err := parseDenseID(originPrimary)
	if err != nil {
		return 0, 0, err
	}
	terminus, err := parseDenseID(terminusPrimary)
	if err != nil {
		return 0, 0, err
	}
	return origin, terminus, nil
}

func genPulse(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	seed := int64(intParamOr(params, "seed", 1))
	series := builder.BuildPulse(n, seed)
	return layoutSeries(g, store, series)
}

func genChirp(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	seed := int64(intParamOr(params, "seed", 1))
	series := builder.BuildAudioChirp(n, seed)
	return layoutSeries(g, store, series)
}

func genOHLC(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	days, err := intParam(params, "days")
	if err != nil {
		return Result{}, err
	}
	seed := int64(intParamOr(params, "seed", 1))
	_, _, _, closes := builder.BuildOHLCSeries(days, seed)
	return layoutSeries(g, store, closes)
}
