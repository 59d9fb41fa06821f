package plex

// mediaContainerEnvelope is the JSON shape of every library endpoint.
type mediaContainerEnvelope struct {
	MediaContainer mediaContainer `json:"MediaContainer"`
}

type mediaContainer struct {
	Size      int             `json:"size"`
	Directory []directoryJSON `json:"Directory"`
	Metadata  []metadataJSON  `json:"Metadata"`
}

type directoryJSON struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type metadataJSON struct {
	RatingKey   string     `json:"ratingKey"`
	GUID        string     `json:"guid"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Index       *int       `json:"index,omitempty"`
	ParentIndex *int       `json:"parentIndex,omitempty"`
	Guids       []guidJSON `json:"Guid"`
}

type guidJSON struct {
	ID string `json:"id"`
}

func (m metadataJSON) externalIDs() []string {
	ids := make([]string, 0, len(m.Guids))
	for _, g := range m.Guids {
		if g.ID != "" {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func intValue(v *int) (int, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
