package detectors

// pythonStdlib lists the top-level modules of the Python 3 standard library.
var pythonStdlib = set(
	"__future__", "abc", "aifc", "argparse", "array", "ast", "asynchat", "asyncio", "asyncore",
	"atexit", "audioop", "base64", "bdb", "binascii", "binhex", "bisect", "builtins",
	"bz2", "calendar", "cgi", "cgitb", "chunk", "cmath", "cmd", "code", "codecs",
	"codeop", "collections", "colorsys", "compileall", "concurrent", "configparser",
	"contextlib", "contextvars", "copy", "copyreg", "cProfile", "csv", "ctypes", "curses",
	"dataclasses", "datetime", "dbm", "decimal", "difflib", "dis", "doctest", "email",
	"encodings", "enum", "errno", "faulthandler", "fcntl", "filecmp", "fileinput",
	"fnmatch", "fractions", "ftplib", "functools", "gc", "getopt", "getpass", "gettext",
	"glob", "grp", "gzip", "hashlib", "heapq", "hmac", "html", "http", "idlelib",
	"imaplib", "importlib", "inspect", "io", "ipaddress", "itertools", "json", "keyword",
	"linecache", "locale", "logging", "lzma", "mailbox", "marshal", "math", "mimetypes",
	"mmap", "modulefinder", "multiprocessing", "netrc", "nis", "nntplib", "numbers",
	"operator", "os", "ossaudiodev", "pathlib", "pdb", "pickle", "pickletools", "pipes",
	"pkgutil", "platform", "plistlib", "poplib", "posix", "posixpath", "pprint",
	"profile", "pstats", "pty", "pwd", "py_compile", "pyclbr", "pydoc", "queue", "quopri",
	"random", "re", "readline", "reprlib", "resource", "rlcompleter", "runpy", "sched",
	"secrets", "select", "selectors", "shelve", "shlex", "shutil", "signal", "site",
	"smtpd", "smtplib", "sndhdr", "socket", "socketserver", "spwd", "sqlite3",
	"sre_compile", "sre_constants", "sre_parse", "ssl", "stat", "statistics", "string",
	"stringprep", "struct", "subprocess", "sunau", "symtable", "sys", "sysconfig",
	"syslog", "tabnanny", "tarfile", "telnetlib", "tempfile", "termios", "test",
	"textwrap", "threading", "time", "timeit", "tkinter", "token", "tokenize", "tomllib",
	"trace", "traceback", "tracemalloc", "tty", "turtle", "turtledemo", "types", "typing",
	"unicodedata", "unittest", "urllib", "uu", "uuid", "venv", "warnings", "wave",
	"weakref", "webbrowser", "winreg", "winsound", "wsgiref", "xdrlib", "xml", "xmlrpc",
	"zipapp", "zipfile", "zipimport", "zlib", "zoneinfo", "_thread",
)

// knownPythonPackages are widely used distributions that an unresolved import
// can safely name.
var knownPythonPackages = set(
	"click", "rich", "pathspec", "requests", "flask", "django", "fastapi", "sqlalchemy",
	"pydantic", "numpy", "pandas", "matplotlib", "seaborn", "scikit-learn", "sklearn",
	"tensorflow", "torch", "keras", "scipy", "pytest", "black", "isort", "flake8",
	"pylint", "mypy", "setuptools", "wheel", "pip", "virtualenv", "celery", "redis",
	"boto3", "botocore", "paramiko", "cryptography", "jwt", "passlib", "bcrypt",
	"aiohttp", "httpx", "uvicorn", "gunicorn", "starlette", "alembic", "psycopg2",
	"pymysql", "motor", "pymongo", "elasticsearch", "loguru", "structlog", "attrs",
	"cattrs", "marshmallow", "cerberus", "voluptuous", "jsonschema", "arrow", "pendulum",
	"dateutil", "pytz", "babel", "pillow", "PIL", "lxml", "bs4", "beautifulsoup4",
	"scrapy", "selenium", "playwright", "yaml", "toml", "dotenv", "environ", "decouple",
	"dynaconf", "openai", "anthropic", "langchain", "transformers", "huggingface_hub",
	"tqdm", "colorama", "tabulate", "prettytable", "termcolor", "pytest_cov", "coverage",
	"hypothesis", "faker", "factory_boy", "mock", "responses", "httpretty", "vcrpy",
	"freezegun", "werkzeug", "jinja2", "mako", "chameleon", "itsdangerous", "stripe",
	"twilio", "sendgrid", "mailchimp", "slack_sdk", "google", "googleapiclient", "tweepy",
	"github", "gitlab", "docker", "kubernetes", "terraform", "ansible", "airflow",
	"prefect", "dagster", "luigi", "dask", "ray", "spark", "pyspark", "cv2", "skimage",
	"imageio", "moviepy", "nltk", "spacy", "gensim", "textblob", "sympy", "statsmodels",
	"xgboost", "lightgbm", "catboost",
)

var nodeBuiltins = set(
	"assert", "async_hooks", "buffer", "child_process", "cluster", "console", "constants",
	"crypto", "dgram", "diagnostics_channel", "dns", "domain", "events", "fs", "http",
	"http2", "https", "inspector", "module", "net", "os", "path", "perf_hooks", "process",
	"punycode", "querystring", "readline", "repl", "stream", "string_decoder", "sys",
	"timers", "tls", "trace_events", "tty", "url", "util", "v8", "vm", "wasi",
	"worker_threads", "zlib",
)
