package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
)

const (
	defaultBaseURL = "https://api.flickr.com/services/rest/"
	listPageSize   = 500
)

// Flickr API error codes we care about. Anything else is reported verbatim.
const (
	errCodePhotosetNotFound = 1
	errCodeUserNotFound     = 2
)

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

/*
Client talks to the Flickr REST API. It implements photoprovider.Provider,
mapping photosets onto RemoteAlbum values and classifying Flickr's error
responses into the provider error taxonomy.
*/
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	if config.Timeout <= 0 {
		config.Timeout = time.Second * 15
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

func (c *Client) ListOwnerAlbums(ctx context.Context, ownerID string) ([]photoprovider.RemoteAlbum, error) {
	var (
		err error
	)

	result := []photoprovider.RemoteAlbum{}

	// The photoset list is paged. Walk every page so owners with large
	// album collections are not truncated.
	for page := 1; ; page++ {
		response := flickrPhotosetListResponse{}

		params := url.Values{}
		params.Set("method", "flickr.photosets.getList")
		params.Set("user_id", ownerID)
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(listPageSize))

		if err = c.call(ctx, params, &response); err != nil {
			return nil, fmt.Errorf("error listing albums for owner %s: %w", ownerID, err)
		}

		if err = classifyStat(response.Stat, response.Code, response.Message); err != nil {
			return nil, err
		}

		for _, photoset := range response.Photosets.Photoset {
			result = append(result, mapPhotoset(photoset, ownerID))
		}

		if page >= response.Photosets.Pages || len(response.Photosets.Photoset) == 0 {
			break
		}
	}

	return result, nil
}

func (c *Client) GetAlbum(ctx context.Context, ownerID, remoteAlbumID string) (*photoprovider.RemoteAlbum, error) {
	var (
		err      error
		response flickrPhotosetInfoResponse
	)

	params := url.Values{}
	params.Set("method", "flickr.photosets.getInfo")
	params.Set("user_id", ownerID)
	params.Set("photoset_id", remoteAlbumID)

	if err = c.call(ctx, params, &response); err != nil {
		return nil, fmt.Errorf("error getting album %s: %w", remoteAlbumID, err)
	}

	if err = classifyStat(response.Stat, response.Code, response.Message); err != nil {
		return nil, err
	}

	album := mapPhotoset(response.Photoset, ownerID)
	return &album, nil
}

func (c *Client) ListAlbumPhotos(ctx context.Context, remoteAlbumID string, pageSize int) ([]photoprovider.RemotePhoto, error) {
	var (
		err      error
		response flickrPhotosResponse
	)

	if pageSize <= 0 {
		pageSize = 100
	}

	params := url.Values{}
	params.Set("method", "flickr.photosets.getPhotos")
	params.Set("photoset_id", remoteAlbumID)
	params.Set("extras", "url_t,url_m,url_l,url_k")
	params.Set("per_page", strconv.Itoa(pageSize))

	if err = c.call(ctx, params, &response); err != nil {
		return nil, fmt.Errorf("error listing photos for album %s: %w", remoteAlbumID, err)
	}

	if err = classifyStat(response.Stat, response.Code, response.Message); err != nil {
		return nil, err
	}

	result := []photoprovider.RemotePhoto{}

	for _, photo := range response.Photoset.Photo {
		result = append(result, photoprovider.RemotePhoto{
			ID:           photo.ID,
			Title:        photo.Title,
			ThumbnailURL: photo.URLT,
			MediumURL:    photo.URLM,
			LargeURL:     photo.URLL,
			XLargeURL:    photo.URLK,
		})
	}

	return result, nil
}

func (c *Client) call(ctx context.Context, params url.Values, dest any) error {
	var (
		err      error
		request  *http.Request
		response *http.Response
	)

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	if request, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil); err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	if response, err = c.httpClient.Do(request); err != nil {
		return fmt.Errorf("error calling Flickr: %w", err)
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		return photoprovider.ErrRateLimited
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("flickr returned status %d", response.StatusCode)
	}

	if err = json.NewDecoder(response.Body).Decode(dest); err != nil {
		return fmt.Errorf("error decoding Flickr response: %w", err)
	}

	return nil
}

func classifyStat(stat string, code int, message string) error {
	if stat == "" || stat == "ok" {
		return nil
	}

	switch code {
	case errCodePhotosetNotFound, errCodeUserNotFound:
		return photoprovider.ErrNotFound
	}

	return fmt.Errorf("flickr error %d: %s", code, message)
}

func mapPhotoset(photoset flickrPhotoset, ownerID string) photoprovider.RemoteAlbum {
	owner := photoset.Owner

	if owner == "" {
		owner = ownerID
	}

	photoCount, _ := photoset.Photos.Int64()
	createdAt := time.Time{}

	if seconds, err := strconv.ParseInt(photoset.DateCreate, 10, 64); err == nil {
		createdAt = time.Unix(seconds, 0).UTC()
	}

	coverURL := ""

	if photoset.Server != "" && photoset.Primary != "" && photoset.Secret != "" {
		coverURL = fmt.Sprintf("https://live.staticflickr.com/%s/%s_%s_m.jpg",
			photoset.Server, photoset.Primary, photoset.Secret)
	}

	return photoprovider.RemoteAlbum{
		ID:          photoset.ID,
		OwnerID:     owner,
		Title:       photoset.Title.Content,
		Description: photoset.Description.Content,
		CoverURL:    coverURL,
		PhotoCount:  int(photoCount),
		URL:         fmt.Sprintf("https://www.flickr.com/photos/%s/albums/%s", owner, photoset.ID),
		CreatedAt:   createdAt,
	}
}
