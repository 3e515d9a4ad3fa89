package lobby

import "time"

// Listing 大厅里一个还在等人的房间
type Listing struct {
	RoomID    string    `json:"roomId"`
	SeatCount int       `json:"seatCount"`
	MaxSeats  int       `json:"maxSeats"`
	HostName  string    `json:"hostName"`
	CreatedAt time.Time `json:"createdAt"`
}
