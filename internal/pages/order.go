package pages

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/learnpages/internal/domain/learn"
)

// orderByLessonResources returns nodes sorted by the position of the first
// lesson resource that references each node. Nodes the lesson does not
// reference go last, keeping their relative order.
func orderByLessonResources(lesson *types.Lesson, nodes []*types.ContentNode) []*types.ContentNode {
	firstIndex := make(map[uuid.UUID]int, len(lesson.Resources))
	for i, r := range lesson.Resources {
		if _, seen := firstIndex[r.ContentNodeID]; !seen {
			firstIndex[r.ContentNodeID] = i
		}
	}
	key := func(n *types.ContentNode) int {
		if i, ok := firstIndex[n.ID]; ok {
			return i
		}
		return len(lesson.Resources)
	}

	out := make([]*types.ContentNode, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return key(out[a]) < key(out[b]) })
	return out
}

func nodeIDs(nodes []*types.ContentNode) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
