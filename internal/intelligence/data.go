package intelligence

// builtinPackages is the published list of npm packages compromised by the
// Shai-Hulud worm (September 2025), with every known bad version.
var builtinPackages = []InfectedPackage{
	{Name: "angulartics2", Versions: []string{"14.1.1", "14.1.2"}, Category: "angular"},
	{Name: "ngx-bootstrap", Versions: []string{"18.1.4", "19.0.3", "19.0.4", "20.0.3", "20.0.4", "20.0.5"}, Category: "angular"},
	{Name: "ngx-color", Versions: []string{"10.0.1", "10.0.2"}, Category: "angular"},
	{Name: "ngx-toastr", Versions: []string{"19.0.1", "19.0.2"}, Category: "angular"},
	{Name: "ngx-trend", Versions: []string{"8.0.1"}, Category: "angular"},
	{Name: "ngx-ws", Versions: []string{"1.1.5", "1.1.6"}, Category: "angular"},
	{Name: "ng2-file-upload", Versions: []string{"7.0.2", "7.0.3", "8.0.1", "8.0.2", "8.0.3", "9.0.1"}, Category: "angular"},
	{Name: "mstate-angular", Versions: []string{"0.4.4"}, Category: "angular"},
	{Name: "devextreme-angular-rpk", Versions: []string{"21.2.8"}, Category: "angular"},
	{Name: "@ui-ux-gang/devextreme-angular-rpk", Versions: []string{"24.1.7"}, Category: "angular"},
	{Name: "@ahmedhfarag/ngx-perfect-scrollbar", Versions: []string{"20.0.20"}, Category: "angular"},
	{Name: "@ahmedhfarag/ngx-virtual-scroller", Versions: []string{"4.0.4"}, Category: "angular"},
	{Name: "@ctrl/deluge", Versions: []string{"7.2.1", "7.2.2"}, Category: "ctrl"},
	{Name: "@ctrl/golang-template", Versions: []string{"1.4.2", "1.4.3"}, Category: "ctrl"},
	{Name: "@ctrl/magnet-link", Versions: []string{"4.0.3", "4.0.4"}, Category: "ctrl"},
	{Name: "@ctrl/ngx-codemirror", Versions: []string{"7.0.1", "7.0.2"}, Category: "ctrl"},
	{Name: "@ctrl/ngx-csv", Versions: []string{"6.0.1", "6.0.2"}, Category: "ctrl"},
	{Name: "@ctrl/ngx-emoji-mart", Versions: []string{"9.2.1", "9.2.2"}, Category: "ctrl"},
	{Name: "@ctrl/ngx-rightclick", Versions: []string{"4.0.1", "4.0.2"}, Category: "ctrl"},
	{Name: "@ctrl/qbittorrent", Versions: []string{"9.7.1", "9.7.2"}, Category: "ctrl"},
	{Name: "@ctrl/react-adsense", Versions: []string{"2.0.1", "2.0.2"}, Category: "ctrl"},
	{Name: "@ctrl/shared-torrent", Versions: []string{"6.3.1", "6.3.2"}, Category: "ctrl"},
	{Name: "@ctrl/tinycolor", Versions: []string{"4.1.1", "4.1.2"}, Category: "ctrl"},
	{Name: "@ctrl/torrent-file", Versions: []string{"4.1.1", "4.1.2"}, Category: "ctrl"},
	{Name: "@ctrl/transmission", Versions: []string{"7.3.1"}, Category: "ctrl"},
	{Name: "@ctrl/ts-base32", Versions: []string{"4.0.1", "4.0.2"}, Category: "ctrl"},
	{Name: "@nativescript-community/arraybuffers", Versions: []string{"1.1.6", "1.1.7", "1.1.8"}, Category: "nativescript"},
	{Name: "@nativescript-community/gesturehandler", Versions: []string{"2.0.35"}, Category: "nativescript"},
	{Name: "@nativescript-community/perms", Versions: []string{"3.0.5", "3.0.6", "3.0.7", "3.0.8"}, Category: "nativescript"},
	{Name: "@nativescript-community/sentry", Versions: []string{"4.6.43"}, Category: "nativescript"},
	{Name: "@nativescript-community/sqlite", Versions: []string{"3.5.2", "3.5.3", "3.5.4", "3.5.5"}, Category: "nativescript"},
	{Name: "@nativescript-community/text", Versions: []string{"1.6.9", "1.6.10", "1.6.11", "1.6.12", "1.6.13"}, Category: "nativescript"},
	{Name: "@nativescript-community/typeorm", Versions: []string{"0.2.30", "0.2.31", "0.2.32", "0.2.33"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-collectionview", Versions: []string{"6.0.6"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-document-picker", Versions: []string{"1.1.27", "1.1.28"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-drawer", Versions: []string{"0.1.30"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-image", Versions: []string{"4.5.6"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-label", Versions: []string{"1.3.35", "1.3.36", "1.3.37"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-bottom-navigation", Versions: []string{"7.2.72", "7.2.73", "7.2.74", "7.2.75"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-bottomsheet", Versions: []string{"7.2.72"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-core", Versions: []string{"7.2.72", "7.2.73", "7.2.74", "7.2.75", "7.2.76"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-core-tabs", Versions: []string{"7.2.72", "7.2.73", "7.2.74", "7.2.75", "7.2.76"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-ripple", Versions: []string{"7.2.72", "7.2.73", "7.2.74", "7.2.75"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-material-tabs", Versions: []string{"7.2.72", "7.2.73", "7.2.74", "7.2.75"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-pager", Versions: []string{"14.1.36", "14.1.37", "14.1.38"}, Category: "nativescript"},
	{Name: "@nativescript-community/ui-pulltorefresh", Versions: []string{"2.5.4", "2.5.5", "2.5.6", "2.5.7"}, Category: "nativescript"},
	{Name: "@nstudio/angular", Versions: []string{"20.0.4", "20.0.5", "20.0.6"}, Category: "nstudio"},
	{Name: "@nstudio/focus", Versions: []string{"20.0.4", "20.0.5", "20.0.6"}, Category: "nstudio"},
	{Name: "@nstudio/nativescript-checkbox", Versions: []string{"2.0.6", "2.0.7", "2.0.8", "2.0.9"}, Category: "nstudio"},
	{Name: "@nstudio/nativescript-loading-indicator", Versions: []string{"5.0.1", "5.0.2", "5.0.3", "5.0.4"}, Category: "nstudio"},
	{Name: "@nstudio/ui-collectionview", Versions: []string{"5.1.11", "5.1.12", "5.1.13", "5.1.14"}, Category: "nstudio"},
	{Name: "@nstudio/web-angular", Versions: []string{"20.0.4"}, Category: "nstudio"},
	{Name: "@nstudio/web", Versions: []string{"20.0.4"}, Category: "nstudio"},
	{Name: "@nstudio/xplat-utils", Versions: []string{"20.0.5", "20.0.6", "20.0.7"}, Category: "nstudio"},
	{Name: "@nstudio/xplat", Versions: []string{"20.0.5", "20.0.6", "20.0.7"}, Category: "nstudio"},
	{Name: "@art-ws/common", Versions: []string{"2.0.28"}, Category: "art-ws"},
	{Name: "@art-ws/config-eslint", Versions: []string{"2.0.4", "2.0.5"}, Category: "art-ws"},
	{Name: "@art-ws/config-ts", Versions: []string{"2.0.7", "2.0.8"}, Category: "art-ws"},
	{Name: "@art-ws/db-context", Versions: []string{"2.0.24"}, Category: "art-ws"},
	{Name: "@art-ws/di-node", Versions: []string{"2.0.13"}, Category: "art-ws"},
	{Name: "@art-ws/di", Versions: []string{"2.0.28", "2.0.32"}, Category: "art-ws"},
	{Name: "@art-ws/eslint", Versions: []string{"1.0.5", "1.0.6"}, Category: "art-ws"},
	{Name: "@art-ws/fastify-http-server", Versions: []string{"2.0.24", "2.0.27"}, Category: "art-ws"},
	{Name: "@art-ws/http-server", Versions: []string{"2.0.21", "2.0.25"}, Category: "art-ws"},
	{Name: "@art-ws/openapi", Versions: []string{"0.1.9", "0.1.12"}, Category: "art-ws"},
	{Name: "@art-ws/package-base", Versions: []string{"1.0.5", "1.0.6"}, Category: "art-ws"},
	{Name: "@art-ws/prettier", Versions: []string{"1.0.5", "1.0.6"}, Category: "art-ws"},
	{Name: "@art-ws/slf", Versions: []string{"2.0.15", "2.0.22"}, Category: "art-ws"},
	{Name: "@art-ws/ssl-info", Versions: []string{"1.0.9", "1.0.10"}, Category: "art-ws"},
	{Name: "@art-ws/web-app", Versions: []string{"1.0.3", "1.0.4"}, Category: "art-ws"},
	{Name: "@crowdstrike/commitlint", Versions: []string{"8.1.1", "8.1.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/falcon-shoelace", Versions: []string{"0.4.1", "0.4.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/foundry-js", Versions: []string{"0.19.1", "0.19.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/glide-core", Versions: []string{"0.34.2", "0.34.3"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/logscale-dashboard", Versions: []string{"1.205.1", "1.205.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/logscale-file-editor", Versions: []string{"1.205.1", "1.205.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/logscale-parser-edit", Versions: []string{"1.205.1", "1.205.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/logscale-search", Versions: []string{"1.205.1", "1.205.2"}, Category: "crowdstrike"},
	{Name: "@crowdstrike/tailwind-toucan-base", Versions: []string{"5.0.1", "5.0.2"}, Category: "crowdstrike"},
	{Name: "eslint-config-crowdstrike-node", Versions: []string{"4.0.3", "4.0.4"}, Category: "crowdstrike"},
	{Name: "eslint-config-crowdstrike", Versions: []string{"11.0.2", "11.0.3"}, Category: "crowdstrike"},
	{Name: "remark-preset-lint-crowdstrike", Versions: []string{"4.0.1", "4.0.2"}, Category: "crowdstrike"},
	{Name: "@operato/board", Versions: []string{"9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46"}, Category: "operato"},
	{Name: "@operato/data-grist", Versions: []string{"9.0.29", "9.0.35", "9.0.36", "9.0.37"}, Category: "operato"},
	{Name: "@operato/graphql", Versions: []string{"9.0.22", "9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46"}, Category: "operato"},
	{Name: "@operato/headroom", Versions: []string{"9.0.2", "9.0.35", "9.0.36", "9.0.37"}, Category: "operato"},
	{Name: "@operato/help", Versions: []string{"9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46"}, Category: "operato"},
	{Name: "@operato/i18n", Versions: []string{"9.0.35", "9.0.36", "9.0.37"}, Category: "operato"},
	{Name: "@operato/input", Versions: []string{"9.0.27", "9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46", "9.0.47", "9.0.48"}, Category: "operato"},
	{Name: "@operato/layout", Versions: []string{"9.0.35", "9.0.36", "9.0.37"}, Category: "operato"},
	{Name: "@operato/popup", Versions: []string{"9.0.22", "9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46", "9.0.49"}, Category: "operato"},
	{Name: "@operato/pull-to-refresh", Versions: []string{"9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42"}, Category: "operato"},
	{Name: "@operato/shell", Versions: []string{"9.0.22", "9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39"}, Category: "operato"},
	{Name: "@operato/styles", Versions: []string{"9.0.2", "9.0.35", "9.0.36", "9.0.37"}, Category: "operato"},
	{Name: "@operato/utils", Versions: []string{"9.0.22", "9.0.35", "9.0.36", "9.0.37", "9.0.38", "9.0.39", "9.0.40", "9.0.41", "9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46", "9.0.49"}, Category: "operato"},
	{Name: "@things-factory/attachment-base", Versions: []string{"9.0.43", "9.0.44", "9.0.45", "9.0.46", "9.0.47", "9.0.48", "9.0.49", "9.0.50"}, Category: "things-factory"},
	{Name: "@things-factory/auth-base", Versions: []string{"9.0.43", "9.0.44", "9.0.45"}, Category: "things-factory"},
	{Name: "@things-factory/email-base", Versions: []string{"9.0.42", "9.0.43", "9.0.44", "9.0.45", "9.0.46", "9.0.47", "9.0.48", "9.0.49", "9.0.50", "9.0.51", "9.0.52", "9.0.53", "9.0.54"}, Category: "things-factory"},
	{Name: "@things-factory/env", Versions: []string{"9.0.42", "9.0.43", "9.0.44", "9.0.45"}, Category: "things-factory"},
	{Name: "@things-factory/integration-base", Versions: []string{"9.0.43", "9.0.44", "9.0.45"}, Category: "things-factory"},
	{Name: "@things-factory/integration-marketplace", Versions: []string{"9.0.43", "9.0.44", "9.0.45"}, Category: "things-factory"},
	{Name: "@things-factory/shell", Versions: []string{"9.0.43", "9.0.44", "9.0.45"}, Category: "things-factory"},
	{Name: "@teselagen/bio-parsers", Versions: []string{"0.4.30"}, Category: "teselagen"},
	{Name: "@teselagen/bounce-loader", Versions: []string{"0.3.16", "0.3.17"}, Category: "teselagen"},
	{Name: "@teselagen/file-utils", Versions: []string{"0.3.22"}, Category: "teselagen"},
	{Name: "@teselagen/liquibase-tools", Versions: []string{"0.4.1"}, Category: "teselagen"},
	{Name: "@teselagen/ove", Versions: []string{"0.7.40"}, Category: "teselagen"},
	{Name: "@teselagen/range-utils", Versions: []string{"0.3.14", "0.3.15"}, Category: "teselagen"},
	{Name: "@teselagen/react-list", Versions: []string{"0.8.19", "0.8.20"}, Category: "teselagen"},
	{Name: "@teselagen/react-table", Versions: []string{"6.10.19", "6.10.20", "6.10.22"}, Category: "teselagen"},
	{Name: "@teselagen/sequence-utils", Versions: []string{"0.3.34"}, Category: "teselagen"},
	{Name: "@teselagen/ui", Versions: []string{"0.9.10"}, Category: "teselagen"},
	{Name: "eslint-config-teselagen", Versions: []string{"6.1.7", "6.1.8"}, Category: "teselagen"},
	{Name: "graphql-sequelize-teselagen", Versions: []string{"5.3.8", "5.3.9"}, Category: "teselagen"},
	{Name: "teselagen-interval-tree", Versions: []string{"1.1.2"}, Category: "teselagen"},
	{Name: "tg-client-query-builder", Versions: []string{"2.14.4", "2.14.5"}, Category: "teselagen"},
	{Name: "tg-redbird", Versions: []string{"1.3.1", "1.3.2"}, Category: "teselagen"},
	{Name: "tg-seq-gen", Versions: []string{"1.0.9", "1.0.10"}, Category: "teselagen"},
	{Name: "@hestjs/core", Versions: []string{"0.2.1"}, Category: "hestjs"},
	{Name: "@hestjs/cqrs", Versions: []string{"0.1.6"}, Category: "hestjs"},
	{Name: "@hestjs/demo", Versions: []string{"0.1.2"}, Category: "hestjs"},
	{Name: "@hestjs/eslint-config", Versions: []string{"0.1.2"}, Category: "hestjs"},
	{Name: "@hestjs/logger", Versions: []string{"0.1.6"}, Category: "hestjs"},
	{Name: "@hestjs/scalar", Versions: []string{"0.1.7"}, Category: "hestjs"},
	{Name: "@hestjs/validation", Versions: []string{"0.1.6"}, Category: "hestjs"},
	{Name: "create-hest-app", Versions: []string{"0.1.9"}, Category: "hestjs"},
	{Name: "react-complaint-image", Versions: []string{"0.0.32", "0.0.35"}, Category: "react"},
	{Name: "react-jsonschema-form-conditionals", Versions: []string{"0.3.18", "0.3.21"}, Category: "react"},
	{Name: "react-jsonschema-form-extras", Versions: []string{"1.0.4"}, Category: "react"},
	{Name: "react-jsonschema-rxnt-extras", Versions: []string{"0.4.9"}, Category: "react"},
	{Name: "mstate-react", Versions: []string{"1.6.5"}, Category: "react"},
	{Name: "mstate-dev-react", Versions: []string{"1.1.1"}, Category: "react"},
	{Name: "thangved-react-grid", Versions: []string{"1.0.3"}, Category: "react"},
	{Name: "rxnt-authentication", Versions: []string{"0.0.3", "0.0.4", "0.0.5", "0.0.6"}, Category: "rxnt"},
	{Name: "rxnt-healthchecks-nestjs", Versions: []string{"1.0.2", "1.0.3", "1.0.4", "1.0.5"}, Category: "rxnt"},
	{Name: "rxnt-kue", Versions: []string{"1.0.4", "1.0.5", "1.0.6", "1.0.7"}, Category: "rxnt"},
	{Name: "@tnf-dev/api", Versions: []string{"1.0.8"}, Category: "tnf"},
	{Name: "@tnf-dev/core", Versions: []string{"1.0.8"}, Category: "tnf"},
	{Name: "@tnf-dev/js", Versions: []string{"1.0.8"}, Category: "tnf"},
	{Name: "@tnf-dev/mui", Versions: []string{"1.0.8"}, Category: "tnf"},
	{Name: "@tnf-dev/react", Versions: []string{"1.0.8"}, Category: "tnf"},
	{Name: "@yoobic/design-system", Versions: []string{"6.5.17"}, Category: "yoobic"},
	{Name: "@yoobic/jpeg-camera-es6", Versions: []string{"1.0.13"}, Category: "yoobic"},
	{Name: "@yoobic/yobi", Versions: []string{"8.7.53"}, Category: "yoobic"},
	{Name: "yoo-styles", Versions: []string{"6.0.326"}, Category: "yoobic"},
	{Name: "@nexe/config-manager", Versions: []string{"0.1.1"}, Category: "nexe"},
	{Name: "@nexe/eslint-config", Versions: []string{"0.1.1"}, Category: "nexe"},
	{Name: "@nexe/logger", Versions: []string{"0.1.3"}, Category: "nexe"},
	{Name: "ember-browser-services", Versions: []string{"5.0.2", "5.0.3"}, Category: "ember"},
	{Name: "ember-headless-form-yup", Versions: []string{"1.0.1"}, Category: "ember"},
	{Name: "ember-headless-form", Versions: []string{"1.1.2", "1.1.3"}, Category: "ember"},
	{Name: "ember-headless-table", Versions: []string{"2.1.5", "2.1.6"}, Category: "ember"},
	{Name: "ember-url-hash-polyfill", Versions: []string{"1.0.12", "1.0.13"}, Category: "ember"},
	{Name: "ember-velcro", Versions: []string{"2.2.1", "2.2.2"}, Category: "ember"},
	{Name: "capacitor-notificationhandler", Versions: []string{"0.0.2", "0.0.3"}, Category: "capacitor"},
	{Name: "capacitor-plugin-healthapp", Versions: []string{"0.0.2", "0.0.3"}, Category: "capacitor"},
	{Name: "capacitor-plugin-ihealth", Versions: []string{"1.1.8", "1.1.9"}, Category: "capacitor"},
	{Name: "capacitor-plugin-vonage", Versions: []string{"1.0.2", "1.0.3"}, Category: "capacitor"},
	{Name: "capacitorandroidpermissions", Versions: []string{"0.0.4", "0.0.5"}, Category: "capacitor"},
	{Name: "config-cordova", Versions: []string{"0.8.5"}, Category: "cordova"},
	{Name: "cordova-plugin-voxeet2", Versions: []string{"1.0.24"}, Category: "cordova"},
	{Name: "cordova-voxeet", Versions: []string{"1.0.32"}, Category: "cordova"},
	{Name: "ts-gaussian", Versions: []string{"3.0.5", "3.0.6"}, Category: "typescript"},
	{Name: "ts-imports", Versions: []string{"1.0.1", "1.0.2"}, Category: "typescript"},
	{Name: "swc-plugin-component-annotate", Versions: []string{"1.9.1", "1.9.2"}, Category: "swc"},
	{Name: "koa2-swagger-ui", Versions: []string{"5.11.1", "5.11.2"}, Category: "koa"},
	{Name: "encounter-playground", Versions: []string{"0.0.2", "0.0.3", "0.0.4", "0.0.5"}, Category: "misc"},
	{Name: "json-rules-engine-simplified", Versions: []string{"0.2.1", "0.2.4"}, Category: "misc"},
	{Name: "@thangved/callback-window", Versions: []string{"1.1.4"}, Category: "misc"},
	{Name: "airchief", Versions: []string{"0.3.1"}, Category: "misc"},
	{Name: "airpilot", Versions: []string{"0.8.8"}, Category: "misc"},
	{Name: "browser-webdriver-downloader", Versions: []string{"3.0.8"}, Category: "misc"},
	{Name: "db-evo", Versions: []string{"1.1.4", "1.1.5"}, Category: "misc"},
	{Name: "globalize-rpk", Versions: []string{"1.7.4"}, Category: "misc"},
	{Name: "html-to-base64-image", Versions: []string{"1.0.2"}, Category: "misc"},
	{Name: "jumpgate", Versions: []string{"0.0.2"}, Category: "misc"},
	{Name: "mcfly-semantic-release", Versions: []string{"1.3.1"}, Category: "misc"},
	{Name: "mcp-knowledge-base", Versions: []string{"0.0.2"}, Category: "misc"},
	{Name: "mcp-knowledge-graph", Versions: []string{"1.2.1"}, Category: "misc"},
	{Name: "mobioffice-cli", Versions: []string{"1.0.3"}, Category: "misc"},
	{Name: "monorepo-next", Versions: []string{"13.0.1", "13.0.2"}, Category: "misc"},
	{Name: "mstate-cli", Versions: []string{"0.4.7"}, Category: "misc"},
	{Name: "oradm-to-gql", Versions: []string{"35.0.14", "35.0.15"}, Category: "misc"},
	{Name: "oradm-to-sqlz", Versions: []string{"1.1.2"}, Category: "misc"},
	{Name: "ove-auto-annotate", Versions: []string{"0.0.9", "0.0.10"}, Category: "misc"},
	{Name: "pm2-gelf-json", Versions: []string{"1.0.4", "1.0.5"}, Category: "misc"},
	{Name: "printjs-rpk", Versions: []string{"1.6.1"}, Category: "misc"},
	{Name: "tbssnch", Versions: []string{"1.0.2"}, Category: "misc"},
	{Name: "tvi-cli", Versions: []string{"0.1.5"}, Category: "misc"},
	{Name: "ve-bamreader", Versions: []string{"0.2.6", "0.2.7"}, Category: "misc"},
	{Name: "ve-editor", Versions: []string{"1.0.1", "1.0.2"}, Category: "misc"},
	{Name: "verror-extra", Versions: []string{"6.0.1"}, Category: "misc"},
	{Name: "voip-callkit", Versions: []string{"1.0.2", "1.0.3"}, Category: "misc"},
	{Name: "wdio-web-reporter", Versions: []string{"0.1.3"}, Category: "misc"},
	{Name: "yargs-help-output", Versions: []string{"5.0.3"}, Category: "misc"},
}

var builtinIndicators = Indicators{
	BundleHash:      "46faab8ab153fae6e80e7cca38eab363075bb524edd79e42269217a083628f09",
	WebhookEndpoint: "webhook.site/bb8ca5f6-4175-45d2-b042-fc9ebb8170b7",
	LifecycleScript: "node bundle.js",
}
