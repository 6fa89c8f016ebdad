package testsupport

// ProbeTwoChapters mirrors ffprobe output for a small audiobook with two
// chapters, container tags, and an embedded cover.
const ProbeTwoChapters = `{
    "streams": [
        {
            "index": 0,
            "codec_name": "aac",
            "codec_type": "audio",
            "sample_rate": "44100",
            "channels": 2,
            "disposition": {"default": 1, "attached_pic": 0}
        },
        {
            "index": 1,
            "codec_name": "mjpeg",
            "codec_type": "video",
            "disposition": {"default": 0, "attached_pic": 1},
            "tags": {"comment": "Cover (front)"}
        }
    ],
    "chapters": [
        {
            "id": 0,
            "time_base": "1/1000",
            "start": 0,
            "start_time": "0.000000",
            "end": 60000,
            "end_time": "60.000000",
            "tags": {"title": "Intro"}
        },
        {
            "id": 1,
            "time_base": "1/1000",
            "start": 60000,
            "start_time": "60.000000",
            "end": 120000,
            "end_time": "120.000000",
            "tags": {"title": "Ch:1!"}
        }
    ],
    "format": {
        "filename": "book.m4b",
        "nb_streams": 2,
        "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
        "duration": "120.000000",
        "size": "1234567",
        "tags": {
            "title": "Example Book",
            "artist": "Jane Author",
            "Chapter_1": "shadowed by chapter one"
        }
    }
}`

// ProbeNoCover is ProbeTwoChapters without an attached picture stream.
const ProbeNoCover = `{
    "streams": [
        {"index": 0, "codec_type": "audio", "disposition": {"attached_pic": 0}}
    ],
    "chapters": [
        {"id": 0, "start_time": "0.000000", "end_time": "30.000000", "tags": {"title": "Only"}}
    ],
    "format": {"tags": {"album": "Solo"}}
}`
