package ui

// iconBytes is a 16x16 PNG used as the tray icon.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x31, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x80, 0x02, 0xf9,
	0xfc, 0xfe, 0xff, 0xa4, 0x60, 0x06, 0x74, 0xa0, 0x35, 0x77, 0xff, 0x7f,
	0x52, 0x30, 0x03, 0xb2, 0xcd, 0xa4, 0x6a, 0x86, 0x61, 0xb0, 0x4b, 0x46,
	0x0d, 0x18, 0x35, 0x60, 0x98, 0x18, 0x40, 0x71, 0x66, 0xa2, 0x34, 0x3b,
	0x03, 0x00, 0x53, 0x3d, 0x49, 0x1f, 0x7d, 0x8f, 0xf5, 0xe7, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
