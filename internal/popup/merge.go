package popup

import "sort"

// Merge reconciles a freshly fetched testimonial list with the previous
// state. Only liked items survive, newest first; ties keep input order.
//
// On a live update (firstLoad false) whose newest item differs from the
// newest seen last time, that item becomes the priority. The queue is
// always replaced. An empty result leaves LastNewestID and Priority alone.
// A nil fetched slice means the payload carried no list and changes nothing.
func Merge(prev State, fetched []Testimonial, firstLoad bool) State {
	if fetched == nil {
		return prev
	}

	fresh := make([]Testimonial, 0, len(fetched))
	for _, t := range fetched {
		if t.IsLiked {
			fresh = append(fresh, t)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})

	next := prev
	if len(fresh) > 0 {
		newest := fresh[0]
		if !firstLoad && prev.LastNewestID != "" && newest.ID != prev.LastNewestID {
			next.Priority = &newest
		}
		next.LastNewestID = newest.ID
	}
	next.Queue = fresh
	return next
}
