package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"io"

	"github.com/disintegration/imaging"
)

// ErrNotImage 上传内容无法解码为图片
var ErrNotImage = errors.New("not a supported image")

// MaxAvatarBytes 头像原始文件大小上限
const MaxAvatarBytes = 5 << 20

// ProcessAvatar 解码图片并裁剪为 size x size 的正方形 JPEG
func ProcessAvatar(r io.Reader, size int) (*bytes.Buffer, error) {
	src, err := imaging.Decode(io.LimitReader(r, MaxAvatarBytes+1), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var dst image.Image = imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err = imaging.Encode(buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf, nil
}
