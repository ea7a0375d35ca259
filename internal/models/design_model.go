package models

import "time"

// Design is one completed generation: the user's source photo plus the
// AI-generated restyling. A design is only persisted after the generator call
// and both image uploads succeeded, so GeneratedImage is always set for
// records created by this service; older records missing it are failed or
// in-flight generations and must not be presented as successes.
type Design struct {
	ID               string    `json:"id" firestore:"-"`
	UserID           string    `json:"userId" firestore:"userId"`
	Image            string    `json:"image" firestore:"image"`
	ImageID          string    `json:"imageId" firestore:"imageId"`
	GeneratedImage   string    `json:"generatedImage" firestore:"generatedImage"`
	GeneratedImageID string    `json:"generatedImageId" firestore:"generatedImageId"`
	RoomType         string    `json:"roomType" firestore:"roomType"`
	DesignStyle      string    `json:"designStyle" firestore:"designStyle"`
	ColorTone        string    `json:"colorTone" firestore:"colorTone"`
	CustomPrompt     string    `json:"customPrompt,omitempty" firestore:"customPrompt"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt"`
}
