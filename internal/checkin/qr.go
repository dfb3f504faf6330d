package checkin

import (
    "encoding/base64"

    qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the pixel width/height of the rendered QR image.
const qrSize = 300

// QRDataURL renders a token wire string into a scannable PNG and
// returns it as a data URL suitable for direct display in the
// mini-app.
func QRDataURL(tokenJSON string) (string, error) {
    png, err := qrcode.Encode(tokenJSON, qrcode.Medium, qrSize)
    if err != nil {
        return "", err
    }
    return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
