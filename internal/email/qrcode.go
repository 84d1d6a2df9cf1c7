package email

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// bookingQRCode renders the booking reference as a PNG attachment.
func bookingQRCode(bookingID string) (Attachment, error) {
	png, err := qrcode.Encode(bookingID, qrcode.Medium, qrSize)
	if err != nil {
		return Attachment{}, fmt.Errorf("encode booking qr code: %w", err)
	}
	return Attachment{
		Content:  png,
		FileName: "booking-" + bookingID + ".png",
		MIMEType: "image/png",
	}, nil
}
