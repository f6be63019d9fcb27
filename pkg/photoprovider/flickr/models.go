package flickr

import "encoding/json"

type flickrContent struct {
	Content string `json:"_content"`
}

type flickrPhotoset struct {
	ID          string        `json:"id"`
	Owner       string        `json:"owner"`
	Primary     string        `json:"primary"`
	Secret      string        `json:"secret"`
	Server      string        `json:"server"`
	Photos      json.Number   `json:"photos"`
	Title       flickrContent `json:"title"`
	Description flickrContent `json:"description"`
	DateCreate  string        `json:"date_create"`
}

type flickrPhotosetListResponse struct {
	Photosets struct {
		Page     int              `json:"page"`
		Pages    int              `json:"pages"`
		Photoset []flickrPhotoset `json:"photoset"`
	} `json:"photosets"`

	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type flickrPhotosetInfoResponse struct {
	Photoset flickrPhotoset `json:"photoset"`

	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type flickrPhoto struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URLT  string `json:"url_t"`
	URLM  string `json:"url_m"`
	URLL  string `json:"url_l"`
	URLK  string `json:"url_k"`
}

type flickrPhotosResponse struct {
	Photoset struct {
		ID    string        `json:"id"`
		Photo []flickrPhoto `json:"photo"`
	} `json:"photoset"`

	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
