// Package dataset defines the input data model for the map engine and the
// attributes derived from it at load time.
//
// A dataset is produced by an external embedding pipeline: items carry a
// precomputed 2-D projection and a cluster assignment, clusters carry a
// centroid and a semantic label. The engine never recomputes projections or
// cluster membership; it only derives presentation attributes (priority
// rank, importance tier, label-of-detail variants) once per load.
package dataset

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/matzehuels/pointscape/pkg/geom"
)

// Dataset modes.
const (
	ModeImage = "image"
	ModeText  = "text"
)

// Unclustered is the cluster id assigned to noise points.
const Unclustered = -1

// Item is a single plotted entity. Immutable after load.
type Item struct {
	ID        string     `json:"id" bson:"id"`
	Position  [2]float64 `json:"position2D" bson:"position2d"`
	ClusterID int        `json:"clusterId" bson:"cluster_id"`
	Content   string     `json:"content" bson:"content"`
	Preview   string     `json:"preview,omitempty" bson:"preview,omitempty"`
	FullText  string     `json:"full_text,omitempty" bson:"full_text,omitempty"`
}

// Point returns the item's 2-D projection as a geometry point.
func (it *Item) Point() geom.Point {
	return geom.Point{X: it.Position[0], Y: it.Position[1]}
}

// Cluster is a named group of items.
type Cluster struct {
	ID       int        `json:"id" bson:"id"`
	Centroid [2]float64 `json:"centroid2D" bson:"centroid2d"`
	Label    string     `json:"label" bson:"label"`
	Size     int        `json:"size" bson:"size"`

	// Derived at load time, not part of the input format.

	// Rank is a strict ordering by descending member count
	// (0 = largest, ties broken by input order).
	Rank int `json:"-" bson:"-"`

	// Tier is the importance tier (0, 1 or 2) derived from Rank against a
	// budget that scales with the total cluster count. Non-decreasing in
	// Rank.
	Tier int `json:"-" bson:"-"`

	// Labels holds the three label-of-detail variants.
	Labels LODLabels `json:"-" bson:"-"`

	// Members is the number of items that actually reference this cluster
	// after filtering, which can be lower than Size when the pipeline and
	// assignments disagree. Clusters with zero members are excluded from
	// label candidacy.
	Members int `json:"-" bson:"-"`
}

// CentroidPoint returns the centroid as a geometry point.
func (c *Cluster) CentroidPoint() geom.Point {
	return geom.Point{X: c.Centroid[0], Y: c.Centroid[1]}
}

// LODLabels is the three-level label-of-detail string set for a cluster.
type LODLabels struct {
	Broad  string
	Mid    string
	Detail string
}

// Tier selects the variant for a label-of-detail tier (0 broad, 1 mid,
// anything else detail).
func (l LODLabels) Tier(tier int) string {
	switch tier {
	case 0:
		return l.Broad
	case 1:
		return l.Mid
	default:
		return l.Detail
	}
}

// Dataset is one loaded visualization input. Owned exclusively by the
// engine for the lifetime of one render.
type Dataset struct {
	Mode     string    `json:"mode" bson:"mode"`
	Items    []Item    `json:"items" bson:"items"`
	Clusters []Cluster `json:"clusters" bson:"clusters"`
}

// IsText reports whether the dataset holds text documents.
func (d *Dataset) IsText() bool { return d.Mode == ModeText }

// Empty reports whether there is nothing to render.
func (d *Dataset) Empty() bool { return len(d.Items) == 0 }

// ClusterByID returns the cluster with the given id, or nil.
func (d *Dataset) ClusterByID(id int) *Cluster {
	for i := range d.Clusters {
		if d.Clusters[i].ID == id {
			return &d.Clusters[i]
		}
	}
	return nil
}

// MemberPoints returns the data-space positions of the items assigned to
// the cluster with the given id.
func (d *Dataset) MemberPoints(clusterID int) []geom.Point {
	var pts []geom.Point
	for i := range d.Items {
		if d.Items[i].ClusterID == clusterID {
			pts = append(pts, d.Items[i].Point())
		}
	}
	return pts
}

// Positions returns the data-space positions of all items.
func (d *Dataset) Positions() []geom.Point {
	pts := make([]geom.Point, len(d.Items))
	for i := range d.Items {
		pts[i] = d.Items[i].Point()
	}
	return pts
}

// Unmarshal parses a dataset from JSON and derives presentation attributes.
func Unmarshal(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}
	d.Finalize()
	return &d, nil
}

// Finalize derives all load-time attributes: generated ids, surviving
// member counts, rank, importance tier, and label-of-detail variants.
// It is idempotent and must be called once after the raw input is decoded.
func (d *Dataset) Finalize() {
	if d.Mode == "" {
		d.Mode = ModeImage
	}

	for i := range d.Items {
		if d.Items[i].ID == "" {
			d.Items[i].ID = uuid.NewString()
		}
	}

	members := make(map[int]int, len(d.Clusters))
	for i := range d.Items {
		if id := d.Items[i].ClusterID; id != Unclustered {
			members[id]++
		}
	}
	for i := range d.Clusters {
		d.Clusters[i].Members = members[d.Clusters[i].ID]
	}

	d.assignRanks()
	d.assignTiers()
	d.assignLabels()
}

// assignRanks orders clusters by descending member count, ties broken by
// input order. Rank 0 is the largest cluster.
func (d *Dataset) assignRanks() {
	idx := make([]int, len(d.Clusters))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d.Clusters[idx[a]].Size > d.Clusters[idx[b]].Size
	})
	for rank, i := range idx {
		d.Clusters[i].Rank = rank
	}
}

// assignTiers maps ranks onto importance tiers. The tier-0 and tier-1
// budgets scale with the total cluster count but stay within fixed bounds,
// so small datasets still get a headline cluster and large ones never
// promote too many.
func (d *Dataset) assignTiers() {
	total := len(d.Clusters)
	tier0 := clampInt(total/8, 2, 4)
	tier1 := clampInt(total/3, 4, 10)

	for i := range d.Clusters {
		switch r := d.Clusters[i].Rank; {
		case r < tier0:
			d.Clusters[i].Tier = 0
		case r < tier0+tier1:
			d.Clusters[i].Tier = 1
		default:
			d.Clusters[i].Tier = 2
		}
	}
}

// assignLabels builds the three label-of-detail variants per cluster. For
// text datasets the detail variant appends salient keywords extracted from
// member previews.
func (d *Dataset) assignLabels() {
	for i := range d.Clusters {
		c := &d.Clusters[i]
		c.Labels.Broad = c.Label
		c.Labels.Mid = fmt.Sprintf("%s · %d", c.Label, c.Size)

		if d.IsText() {
			if kw := d.clusterKeywords(c.ID); len(kw) > 0 {
				c.Labels.Detail = fmt.Sprintf("%s — %s", c.Labels.Mid, joinKeywords(kw))
				continue
			}
		}
		c.Labels.Detail = fmt.Sprintf("%s · %d items", c.Label, c.Size)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
