package covercache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/alitto/pond/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/services"
	"github.com/nfnt/resize"
)

const (
	thumbnailMaxSize uint = 400
	cardMaxSize      uint = 800
)

type CoverCacher interface {
	CreateCache()
}

type CoverCacheConfig struct {
	AlbumService     services.AlbumServicer
	AwsBucket        string
	AwsRegion        string
	CoverCacheFolder string
	MaxCacheWorkers  int
	S3Client         s3.S3Client
	ShutdownCtx      context.Context
}

/*
CoverCacheService keeps locally-hosted copies of approved album covers so
the public gallery does not hotlink the photo host on every page view. A
cover is re-fetched when the album has synced more recently than the cached
copy was written, or when an admin points the album at a different cover.
*/
type CoverCacheService struct {
	albumService     services.AlbumServicer
	awsBucket        string
	awsRegion        string
	coverCacheFolder string
	maxCacheWorkers  int
	s3Client         s3.S3Client
	shutdownCtx      context.Context
}

func NewCoverCacheService(config CoverCacheConfig) CoverCacheService {
	return CoverCacheService{
		albumService:     config.AlbumService,
		awsBucket:        config.AwsBucket,
		awsRegion:        config.AwsRegion,
		coverCacheFolder: config.CoverCacheFolder,
		maxCacheWorkers:  config.MaxCacheWorkers,
		s3Client:         config.S3Client,
		shutdownCtx:      config.ShutdownCtx,
	}
}

func (c CoverCacheService) CreateCache() {
	var (
		err    error
		albums []*models.Album
	)

	slog.Info("starting cover cache refresh...")

	if err = c.ensureBucketExists(c.awsBucket); err != nil {
		slog.Error("error ensuring bucket exists. aborting", "bucket", c.awsBucket, "error", err)
		os.Exit(1)
	}

	/*
	 * Only approved albums are ever shown publicly, so those are the only
	 * covers worth caching.
	 */
	albums, _, err = c.albumService.GetAlbumList(services.AlbumListOptions{
		Viewer:   services.ViewerPublic,
		PageSize: 1000,
	})

	if err != nil {
		slog.Error("error retrieving approved albums for cover cache", "error", err)
		return
	}

	slog.Info("refreshing cover cache...", "numAlbums", len(albums), "numCached", c.countCachedCovers())

	pool := pond.NewPool(c.maxCacheWorkers, pond.WithContext(c.shutdownCtx))

	for _, album := range albums {
		pool.Submit(func() {
			if c.isCoverFresh(album, thumbnailMaxSize) && c.isCoverFresh(album, cardMaxSize) {
				return
			}

			slog.Info("caching cover for album...", "albumID", album.ID, "remoteID", album.RemoteID)

			if err := c.cacheCover(album); err != nil {
				slog.Error("error caching cover for album", "albumID", album.ID, "error", err)
			}
		})
	}

	_ = pool.Stop().Wait()
}

func (c CoverCacheService) ensureBucketExists(bucketName string) error {
	var (
		err    error
		exists bool
	)

	exists, err = c.s3Client.BucketExists(bucketName)

	if err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", bucketName, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", bucketName)

	err = c.s3Client.CreateBucket(
		bucketName,
		createbucketoptions.WithRegion(c.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", bucketName, err)
	}

	return nil
}

func (c CoverCacheService) countCachedCovers() int {
	var (
		err      error
		response s3.ListResponse
	)

	response, err = c.s3Client.List(
		c.awsBucket,
		c.coverCacheFolder,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			return strings.HasSuffix(strings.ToLower(aws.ToString(obj.Key)), ".jpg")
		}),
	)

	if err != nil {
		slog.Error("error listing cached covers", "error", err)
		return 0
	}

	return len(response.Objects)
}

func (c CoverCacheService) coverKey(album *models.Album, maxSize uint) string {
	return filepath.Join(
		c.coverCacheFolder,
		fmt.Sprint(album.ID),
		fmt.Sprintf("cover-%d.jpg", maxSize),
	)
}

func (c CoverCacheService) isCoverFresh(album *models.Album, maxSize uint) bool {
	var (
		err  error
		stat *s3.ObjectMetadata
	)

	key := c.coverKey(album, maxSize)

	if stat, err = c.s3Client.StatObject(c.awsBucket, key); err != nil {
		slog.Error("error retrieving metadata for cached cover", "key", key, "error", err)
		return false
	}

	if stat == nil {
		return false
	}

	lastChanged := album.UpdatedAt

	if album.LastSyncedAt != nil && album.LastSyncedAt.After(lastChanged) {
		lastChanged = *album.LastSyncedAt
	}

	return !stat.LastModified.Before(lastChanged)
}

func (c CoverCacheService) cacheCover(album *models.Album) error {
	var (
		err error
		img image.Image
	)

	coverURL := album.DisplayCoverURL()

	if coverURL == "" {
		return nil
	}

	if img, err = c.downloadImage(coverURL); err != nil {
		return fmt.Errorf("error downloading cover for album %d: %w", album.ID, err)
	}

	for _, maxSize := range []uint{thumbnailMaxSize, cardMaxSize} {
		if err = c.putResized(img, c.coverKey(album, maxSize), maxSize); err != nil {
			return err
		}
	}

	return nil
}

func (c CoverCacheService) putResized(img image.Image, key string, maxSize uint) error {
	var (
		err error
		buf bytes.Buffer
	)

	resizedImage := c.resize(img, maxSize)

	if err = jpeg.Encode(&buf, resizedImage, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("error encoding cached cover: %w", err)
	}

	if _, err = c.s3Client.Put(c.awsBucket, key, &buf); err != nil {
		return fmt.Errorf("error uploading cached cover to S3: %w", err)
	}

	return nil
}

func (c CoverCacheService) downloadImage(url string) (image.Image, error) {
	var (
		err      error
		response *http.Response
	)

	client := &http.Client{Timeout: time.Second * 30}

	if response, err = client.Get(url); err != nil {
		return nil, fmt.Errorf("error downloading image from '%s': %w", url, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading image from '%s', status: %s", url, response.Status)
	}

	return c.decodeImage(response.Body)
}

func (c CoverCacheService) decodeImage(r io.Reader) (image.Image, error) {
	var (
		err error
		img image.Image
	)

	if img, _, err = image.Decode(r); err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	return img, nil
}

func (c CoverCacheService) resize(img image.Image, maxSize uint) image.Image {
	var (
		resizedImage image.Image
	)

	/*
	 * Determine which dimension to resize based on the longest edge
	 */
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	var newWidth, newHeight uint
	if width > height {
		// Landscape orientation
		newWidth = maxSize
		newHeight = uint(float64(height) * (float64(maxSize) / float64(width)))
	} else {
		// Portrait orientation or square
		newHeight = maxSize
		newWidth = uint(float64(width) * (float64(maxSize) / float64(height)))
	}

	resizedImage = resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
	return resizedImage
}
